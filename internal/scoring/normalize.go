// Package scoring implements classification routing, the weighted composite
// engines, and the LLM qualitative scorer.
package scoring

// NormalizeScore maps a raw metric value onto 0-100 by linear interpolation
// between the zero- and perfect-thresholds, clamped at both ends. A nil
// value returns the neutral 50; missing data must not zero-bias the
// composite. With higherIsBetter false the scale is inverted: values at or
// below perfect score 100, values at or beyond zero score 0.
func NormalizeScore(value *float64, perfect, zero float64, higherIsBetter bool) float64 {
	if value == nil {
		return 50
	}
	v := *value

	if higherIsBetter {
		if v >= perfect {
			return 100
		}
		if v <= zero {
			return 0
		}
		return (v - zero) / (perfect - zero) * 100
	}

	if v <= perfect {
		return 100
	}
	if v >= zero {
		return 0
	}
	return (zero - v) / (zero - perfect) * 100
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
