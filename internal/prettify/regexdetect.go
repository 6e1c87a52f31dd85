package prettify

import (
	"regexp"
)

// RuleStrength grades how decisive a rule match is.
type RuleStrength int

const (
	// Supporting rules only add weight; they never appear in the
	// quick-match prefilter.
	Supporting RuleStrength = iota
	// Strong rules are characteristic enough to drive the prefilter.
	Strong
	// Definitive rules identify the format on their own; with
	// short-circuiting enabled a single match yields full confidence.
	Definitive
)

// RuleScope selects which part of a block a rule is matched against.
type RuleScope int

const (
	// RuleAnyLine matches the rule against every line.
	RuleAnyLine RuleScope = iota
	// RuleFirstLines matches against the leading N lines.
	RuleFirstLines
	// RuleLastLines matches against the trailing N lines.
	RuleLastLines
	// RuleFullBlock matches against the joined block text. Patterns
	// anchoring on line starts need the (?m) flag.
	RuleFullBlock
	// RulePrecedingCommand matches against the command that produced
	// the block; it never matches when no command is known.
	RulePrecedingCommand
)

// RegexRule is one weighted pattern in a detector.
type RegexRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Weight   float64
	Scope    RuleScope
	ScopeN   int
	Strength RuleStrength
	Disabled bool
}

func (r *RegexRule) matches(block *ContentBlock) bool {
	switch r.Scope {
	case RuleFirstLines:
		return anyLineMatches(r.Pattern, block.FirstLines(r.ScopeN))
	case RuleLastLines:
		return anyLineMatches(r.Pattern, block.LastLines(r.ScopeN))
	case RuleFullBlock:
		return r.Pattern.MatchString(block.FullText())
	case RulePrecedingCommand:
		return block.PrecedingCommand != "" && r.Pattern.MatchString(block.PrecedingCommand)
	default:
		return anyLineMatches(r.Pattern, block.Lines)
	}
}

func anyLineMatches(p *regexp.Regexp, lines []string) bool {
	for _, line := range lines {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// RegexDetector scores blocks by summing the weights of matching rules.
// It satisfies Detector.
type RegexDetector struct {
	formatID     string
	priority     int
	rules        []RegexRule
	threshold    float64
	minMatching  int
	shortCircuit bool
}

// RegexDetectorBuilder assembles a RegexDetector. Defaults: threshold
// 0.6, one matching rule required, definitive short-circuit enabled.
type RegexDetectorBuilder struct {
	d *RegexDetector
}

// NewRegexDetector starts a builder for the given format.
func NewRegexDetector(formatID string, priority int) *RegexDetectorBuilder {
	return &RegexDetectorBuilder{d: &RegexDetector{
		formatID:     formatID,
		priority:     priority,
		threshold:    0.6,
		minMatching:  1,
		shortCircuit: true,
	}}
}

// Threshold sets the minimum summed confidence for a match.
func (b *RegexDetectorBuilder) Threshold(t float64) *RegexDetectorBuilder {
	b.d.threshold = t
	return b
}

// MinMatchingRules sets how many rules must match before the detector
// reports at all.
func (b *RegexDetectorBuilder) MinMatchingRules(n int) *RegexDetectorBuilder {
	b.d.minMatching = n
	return b
}

// ShortCircuit toggles the definitive-rule early exit.
func (b *RegexDetectorBuilder) ShortCircuit(on bool) *RegexDetectorBuilder {
	b.d.shortCircuit = on
	return b
}

// Rule adds a pattern scoped to AnyLine, FullBlock, or PrecedingCommand.
// The pattern must compile; rules are static program data.
func (b *RegexDetectorBuilder) Rule(name, pattern string, weight float64, scope RuleScope, strength RuleStrength) *RegexDetectorBuilder {
	return b.RuleN(name, pattern, weight, scope, 0, strength)
}

// RuleN adds a pattern with a line-count bound for FirstLines/LastLines
// scopes.
func (b *RegexDetectorBuilder) RuleN(name, pattern string, weight float64, scope RuleScope, n int, strength RuleStrength) *RegexDetectorBuilder {
	b.d.rules = append(b.d.rules, RegexRule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Weight:   weight,
		Scope:    scope,
		ScopeN:   n,
		Strength: strength,
	})
	return b
}

// Build finalizes the detector.
func (b *RegexDetectorBuilder) Build() *RegexDetector { return b.d }

func (d *RegexDetector) FormatID() string { return d.formatID }
func (d *RegexDetector) Priority() int    { return d.priority }

// Rules exposes the rule set for configuration overrides.
func (d *RegexDetector) Rules() []RegexRule { return d.rules }

// SetRuleEnabled flips one rule by name. It reports whether the rule
// exists.
func (d *RegexDetector) SetRuleEnabled(name string, enabled bool) bool {
	for i := range d.rules {
		if d.rules[i].Name == name {
			d.rules[i].Disabled = !enabled
			return true
		}
	}
	return false
}

// SetRuleWeight overrides one rule's weight by name.
func (d *RegexDetector) SetRuleWeight(name string, weight float64) bool {
	for i := range d.rules {
		if d.rules[i].Name == name {
			d.rules[i].Weight = weight
			return true
		}
	}
	return false
}

// MergeRule adds a user rule, replacing any existing rule with the same
// name.
func (d *RegexDetector) MergeRule(rule RegexRule) {
	for i := range d.rules {
		if d.rules[i].Name == rule.Name {
			d.rules[i] = rule
			return
		}
	}
	d.rules = append(d.rules, rule)
}

// QuickMatch checks the leading lines against the detector's Strong and
// Definitive line-scoped rules. A detector with no such rules always
// passes the prefilter.
func (d *RegexDetector) QuickMatch(lines []string) bool {
	sawQuickRule := false
	for i := range d.rules {
		r := &d.rules[i]
		if r.Disabled || r.Strength < Strong {
			continue
		}
		if r.Scope != RuleAnyLine && r.Scope != RuleFirstLines {
			continue
		}
		sawQuickRule = true
		scan := lines
		if r.Scope == RuleFirstLines && r.ScopeN < len(scan) {
			scan = scan[:r.ScopeN]
		}
		if anyLineMatches(r.Pattern, scan) {
			return true
		}
	}
	return !sawQuickRule
}

// Detect sums matching rule weights into a confidence, capped at 1.0.
// A matching Definitive rule short-circuits to full confidence when
// enabled. Results below the threshold or the matching-rule floor are
// nil.
func (d *RegexDetector) Detect(block *ContentBlock) *DetectionResult {
	var (
		confidence float64
		matched    []string
	)
	for i := range d.rules {
		r := &d.rules[i]
		if r.Disabled || !r.matches(block) {
			continue
		}
		matched = append(matched, r.Name)
		if r.Strength == Definitive && d.shortCircuit {
			return &DetectionResult{
				FormatID:     d.formatID,
				Confidence:   1.0,
				MatchedRules: matched,
				Source:       SourceHeuristicScan,
			}
		}
		confidence += r.Weight
	}
	if len(matched) < d.minMatching || confidence < d.threshold {
		return nil
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return &DetectionResult{
		FormatID:     d.formatID,
		Confidence:   confidence,
		MatchedRules: matched,
		Source:       SourceHeuristicScan,
	}
}
