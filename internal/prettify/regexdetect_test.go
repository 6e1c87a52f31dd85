package prettify

import (
	"regexp"
	"testing"
)

func jsonishDetector() *RegexDetector {
	return NewRegexDetector("jsonish", 50).
		Threshold(0.6).
		ShortCircuit(false).
		RuleN("open_brace", `^\s*\{\s*$`, 0.4, RuleFirstLines, 3, Strong).
		Rule("key_value", `^\s*"[^"]+"\s*:`, 0.3, RuleAnyLine, Strong).
		RuleN("close_brace", `^\s*\}\s*$`, 0.2, RuleLastLines, 3, Supporting).
		Rule("curl_context", `^curl\s`, 0.3, RulePrecedingCommand, Supporting).
		Build()
}

func TestRegexDetectorSumsWeights(t *testing.T) {
	d := jsonishDetector()
	block := NewContentBlock([]string{"{", `  "a": 1,`, "}"}, "", 0)
	result := d.Detect(&block)
	if result == nil {
		t.Fatal("expected a match")
	}
	// open_brace + key_value + close_brace = 0.9
	if result.Confidence < 0.89 || result.Confidence > 0.91 {
		t.Fatalf("confidence = %v, want 0.9", result.Confidence)
	}
	if len(result.MatchedRules) != 3 {
		t.Fatalf("matched rules = %v", result.MatchedRules)
	}
}

func TestRegexDetectorBelowThreshold(t *testing.T) {
	d := jsonishDetector()
	// Only close_brace matches: 0.2 < 0.6.
	block := NewContentBlock([]string{"text", "}"}, "", 0)
	if result := d.Detect(&block); result != nil {
		t.Fatalf("below-threshold content matched: %+v", result)
	}
}

func TestRegexDetectorCommandContext(t *testing.T) {
	d := jsonishDetector()
	lines := []string{`  "only": "one rule",`, "trailing"}

	plain := NewContentBlock(lines, "", 0)
	if result := d.Detect(&plain); result != nil {
		t.Fatalf("0.3 should not clear a 0.6 threshold: %+v", result)
	}

	withCmd := NewContentBlock(lines, "curl -s https://x.test/api", 0)
	result := d.Detect(&withCmd)
	if result == nil {
		t.Fatal("command context weight should push past the threshold")
	}
}

func TestRegexDetectorDefinitiveShortCircuit(t *testing.T) {
	d := NewRegexDetector("diffish", 60).
		Rule("git_header", `^diff --git`, 0.9, RuleAnyLine, Definitive).
		Rule("add_line", `^\+`, 0.1, RuleAnyLine, Supporting).
		Build()
	block := NewContentBlock([]string{"diff --git a/x b/x", "+new"}, "", 0)
	result := d.Detect(&block)
	if result == nil || result.Confidence != 1.0 {
		t.Fatalf("definitive match should yield confidence 1.0, got %+v", result)
	}
}

func TestRegexDetectorShortCircuitDisabled(t *testing.T) {
	d := NewRegexDetector("x", 10).
		Threshold(0.5).
		ShortCircuit(false).
		Rule("definitive", `^MARKER$`, 0.7, RuleAnyLine, Definitive).
		Build()
	block := NewContentBlock([]string{"MARKER"}, "", 0)
	result := d.Detect(&block)
	if result == nil || result.Confidence != 0.7 {
		t.Fatalf("with short-circuit off confidence should be the rule weight, got %+v", result)
	}
}

func TestRegexDetectorMinMatchingRules(t *testing.T) {
	d := NewRegexDetector("y", 10).
		Threshold(0.3).
		MinMatchingRules(2).
		ShortCircuit(false).
		Rule("a", `^alpha`, 0.5, RuleAnyLine, Strong).
		Rule("b", `^beta`, 0.5, RuleAnyLine, Strong).
		Build()
	one := NewContentBlock([]string{"alpha"}, "", 0)
	if result := d.Detect(&one); result != nil {
		t.Fatal("single matching rule should not satisfy a floor of 2")
	}
	two := NewContentBlock([]string{"alpha", "beta"}, "", 0)
	if result := d.Detect(&two); result == nil {
		t.Fatal("two matching rules should satisfy the floor")
	}
}

func TestRegexDetectorScopes(t *testing.T) {
	d := NewRegexDetector("scoped", 10).
		Threshold(0.1).
		ShortCircuit(false).
		RuleN("first_only", `^HEAD$`, 0.5, RuleFirstLines, 2, Strong).
		Build()
	late := NewContentBlock([]string{"a", "b", "HEAD"}, "", 0)
	if result := d.Detect(&late); result != nil {
		t.Fatal("FirstLines rule matched beyond its window")
	}
	early := NewContentBlock([]string{"HEAD", "b", "c"}, "", 0)
	if result := d.Detect(&early); result == nil {
		t.Fatal("FirstLines rule should match inside its window")
	}
}

func TestRegexDetectorFullBlockScope(t *testing.T) {
	d := NewRegexDetector("multi", 10).
		Threshold(0.1).
		ShortCircuit(false).
		Rule("pair", `(?m)^---\s+\S+.*\n\+\+\+\s+\S+`, 0.5, RuleFullBlock, Strong).
		Build()
	block := NewContentBlock([]string{"--- a/f.txt", "+++ b/f.txt"}, "", 0)
	if result := d.Detect(&block); result == nil {
		t.Fatal("full-block rule should match across lines")
	}
}

func TestRegexDetectorQuickMatch(t *testing.T) {
	d := jsonishDetector()
	if !d.QuickMatch([]string{"{", `"k": 1`}) {
		t.Fatal("quick match should pass on a strong line rule")
	}
	if d.QuickMatch([]string{"plain prose", "nothing here"}) {
		t.Fatal("quick match should reject plain prose")
	}
	// Supporting-only detectors cannot prefilter and always pass.
	supportingOnly := NewRegexDetector("s", 10).
		Rule("weak", `x`, 0.1, RuleAnyLine, Supporting).
		Build()
	if !supportingOnly.QuickMatch([]string{"anything"}) {
		t.Fatal("detector without quick rules must pass the prefilter")
	}
}

func TestRegexDetectorRuleOverrides(t *testing.T) {
	d := jsonishDetector()
	if !d.SetRuleEnabled("key_value", false) {
		t.Fatal("SetRuleEnabled should find the rule")
	}
	block := NewContentBlock([]string{`"a": 1`}, "", 0)
	if result := d.Detect(&block); result != nil {
		t.Fatal("disabled rule still matched")
	}
	if d.SetRuleEnabled("no_such_rule", true) {
		t.Fatal("unknown rule reported found")
	}

	if !d.SetRuleWeight("close_brace", 0.8) {
		t.Fatal("SetRuleWeight should find the rule")
	}
	closing := NewContentBlock([]string{"}"}, "", 0)
	if result := d.Detect(&closing); result == nil {
		t.Fatal("boosted rule weight should clear the threshold")
	}
}

func TestRegexDetectorMergeRule(t *testing.T) {
	d := jsonishDetector()
	before := len(d.Rules())
	d.MergeRule(RegexRule{
		Name:     "user_rule",
		Pattern:  regexp.MustCompile(`^CUSTOM`),
		Weight:   0.9,
		Scope:    RuleAnyLine,
		Strength: Strong,
	})
	if len(d.Rules()) != before+1 {
		t.Fatal("new user rule should be appended")
	}
	d.MergeRule(RegexRule{
		Name:     "open_brace",
		Pattern:  regexp.MustCompile(`^\{`),
		Weight:   0.7,
		Scope:    RuleAnyLine,
		Strength: Strong,
	})
	if len(d.Rules()) != before+1 {
		t.Fatal("same-name rule should replace, not append")
	}
}
