// Package revenue holds the pure attribution arithmetic. No I/O, no
// rounding: callers round to currency precision once, at persistence time.
package revenue

// Attribution returns the creator's share of platform-wide viewing for a
// month. A zero or negative platform total is defined to yield 0, never an
// error. The ratio is not clamped here; well-formed data guarantees
// creatorStreams <= platformStreams and the orchestrator handles the
// inconsistent case explicitly.
func Attribution(creatorStreams, platformStreams int64) float64 {
	if platformStreams <= 0 {
		return 0
	}
	return float64(creatorStreams) / float64(platformStreams)
}

// GrossSVOD returns the creator's attributed slice of the pooled
// subscription revenue.
func GrossSVOD(pool, attribution float64) float64 {
	return pool * attribution
}

// CreatorPayout returns the creator's cut of the gross total.
func CreatorPayout(grossTotal, share float64) float64 {
	return grossTotal * share
}

// PlatformFee returns the platform's cut of the gross total. By
// construction CreatorPayout + PlatformFee == grossTotal in exact
// arithmetic.
func PlatformFee(grossTotal, share float64) float64 {
	return grossTotal * (1 - share)
}
