package classifier

import "math"

// AcceptLeaf applies the gatekeeper decision rule: the probability is rounded
// to the nearest integer and 1 accepts. Rounding is half-away-from-zero, so a
// score of exactly 0.5 accepts.
func AcceptLeaf(probability float32) bool {
	return math.Round(float64(probability)) >= 1
}

// TopClass returns the index of the highest probability and the confidence as
// that probability scaled to 0-100. The first index wins ties. probs must be
// non-empty; callers verify the vector width against the label table first.
func TopClass(probs []float32) (int, float64) {
	maxIdx := 0
	maxVal := probs[0]
	for i, v := range probs {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx, float64(maxVal) * 100
}
