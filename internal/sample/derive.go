package sample

import (
	"math"
	"strings"
	"unicode/utf16"
)

// Confidence, file size and the fallback novel count are synthetic
// placeholders for metrics the analysis pipeline does not report yet.

// FilenameHash folds the UTF-16 code units of s into a 32-bit signed
// accumulator (acc = acc*31 + unit), wrapping on overflow.
func FilenameHash(s string) int32 {
	var acc int32
	for _, u := range utf16.Encode([]rune(s)) {
		acc = acc*31 + int32(u)
	}
	return acc
}

// Derive flattens job into a SampleFile. index is the job's 0-based
// position in the fetched list.
func Derive(job Job, res JobResult, index int) SampleFile {
	filename := job.Filename
	if filename == "" {
		filename = UnknownFilename
	}
	seed := abs32(FilenameHash(filename))

	novel := res.NovelCount()
	if novel == 0 {
		novel = int(seed % 13)
	}

	total := float64(150 + seed%800 + int64(50*index))
	if res.Sequences != nil {
		total = float64(len(res.Sequences))
	}
	if m := res.Metadata; m != nil && nonZero(m.TotalSequences) {
		total = *m.TotalSequences
	}

	confidence := float64(75 + seed%20 + int64(index%8))
	if m := res.Metadata; m != nil && nonZero(m.AvgConfidence) {
		confidence = *m.AvgConfidence
	}

	return SampleFile{
		JobID:             job.JobID,
		Filename:          filename,
		TotalSequences:    int(roundHalfUp(total)),
		CreatedAt:         job.CreatedAt,
		FileSizeMB:        int(roundHalfUp(total*0.004 + float64(seed%15) + 3)),
		AvgConfidence:     math.Min(98, math.Max(72, roundHalfUp(confidence))) / 100,
		NovelSpeciesCount: novel,
	}
}

// NovelCount counts the sequences flagged as a possible novel species.
func (r JobResult) NovelCount() int {
	n := 0
	for _, s := range r.Sequences {
		if s.IsNovel() {
			n++
		}
	}
	return n
}

// IsNovel reports whether any novelty signal is set on s. A confidence of
// exactly zero is treated as unset.
func (s Sequence) IsNovel() bool {
	if s.Status == "Novel" {
		return true
	}
	if s.NoveltyScore != nil && *s.NoveltyScore > 0.5 {
		return true
	}
	if nonZero(s.Confidence) && *s.Confidence < 0.5 {
		return true
	}
	taxonomy := strings.ToLower(s.Taxonomy)
	return strings.Contains(taxonomy, "unknown") || strings.Contains(taxonomy, "novel")
}

func abs32(v int32) int64 {
	n := int64(v)
	if n < 0 {
		return -n
	}
	return n
}

func nonZero(v *float64) bool { return v != nil && *v != 0 }

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
