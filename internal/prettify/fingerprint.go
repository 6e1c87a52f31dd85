package prettify

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a block's content independent of where it sits
// on the grid. Identical line sequences hash equal so re-detections of
// unchanged output can be skipped and renders shared across positions.
type Fingerprint uint64

// FingerprintLines hashes a line sequence. Line count and total byte
// length are mixed in ahead of the content so sequences that merely
// concatenate differently cannot collide on the joined text alone.
func FingerprintLines(lines []string) Fingerprint {
	d := xxhash.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(lines)))
	_, _ = d.Write(buf[:])

	total := 0
	for _, line := range lines {
		total += len(line)
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(total))
	_, _ = d.Write(buf[:])

	for _, line := range lines {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(line)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(line)
	}
	return Fingerprint(d.Sum64())
}

// FingerprintBlock hashes a block's lines.
func FingerprintBlock(b *ContentBlock) Fingerprint {
	return FingerprintLines(b.Lines)
}
