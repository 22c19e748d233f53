package matching

import (
	"math"
	"strings"

	"github.com/SurinderTech/findify-finder/internal/errors"
)

// DefaultMatchScore is used when feature evidence is unavailable for a
// pair. It reads as "unknown confidence": the candidate is still surfaced
// rather than excluded, trading precision for recall.
const DefaultMatchScore = 50

// CosineSimilarity computes the cosine of the angle between two feature
// vectors, in [-1, 1]. Zero-magnitude vectors yield 0 without error. A
// length mismatch is a contract violation by the extractor and returns a
// DIMENSION_MISMATCH error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.DimensionMismatch(len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return dot / (magA * magB), nil
}

// LocationOverlap reports whether one location string contains the other,
// case-insensitively. Deliberately loose to maximize recall: "Central Park"
// overlaps "Central Park Coffee Shop". Blank locations never overlap.
func LocationOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ScoreFromSimilarity converts a cosine similarity to an integer percentage
// clamped to [0, 100]. Negative or undefined similarities clamp to 0.
func ScoreFromSimilarity(sim float64) int {
	if math.IsNaN(sim) {
		return 0
	}
	score := int(math.Round(sim * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
