package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttribution(t *testing.T) {
	tests := []struct {
		name            string
		creatorStreams  int64
		platformStreams int64
		want            float64
	}{
		{"quarter share", 3000, 12000, 0.25},
		{"zero creator streams", 0, 12000, 0},
		{"zero platform streams", 3000, 0, 0},
		{"negative platform streams", 3000, -1, 0},
		{"full share", 5000, 5000, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Attribution(tt.creatorStreams, tt.platformStreams))
		})
	}
}

func TestAttributionBounds(t *testing.T) {
	// ratio stays in [0, 1] for any well-formed input
	for _, c := range []int64{0, 1, 999, 12000} {
		for _, p := range []int64{1, 12000, 5000000} {
			if c > p {
				continue
			}
			ratio := Attribution(c, p)
			assert.GreaterOrEqual(t, ratio, 0.0)
			assert.LessOrEqual(t, ratio, 1.0)
		}
	}
}

func TestPayoutFeeComplementarity(t *testing.T) {
	// creatorPayout + platformFee == grossTotal for shares across the
	// allowed range
	grossTotals := []float64{0, 0.01, 97500, 600000, 12345678.9}
	shares := []float64{0.5, 0.65, 0.8, 1.0}

	for _, gross := range grossTotals {
		for _, share := range shares {
			sum := CreatorPayout(gross, share) + PlatformFee(gross, share)
			assert.InEpsilon(t, gross+1, sum+1, 1e-6,
				"gross=%v share=%v", gross, share)
		}
	}
}

func TestRevenueSplitScenario(t *testing.T) {
	// pool 600,000 split over 12,000 platform streams, creator has 3,000
	attribution := Attribution(3000, 12000)
	assert.Equal(t, 0.25, attribution)

	grossSVOD := GrossSVOD(600000, attribution)
	assert.Equal(t, 150000.0, grossSVOD)

	// no PPV, 65% revenue share
	assert.InDelta(t, 97500.0, CreatorPayout(grossSVOD, 0.65), 0.01)
	assert.InDelta(t, 52500.0, PlatformFee(grossSVOD, 0.65), 0.01)
}

func TestZeroPlatformStreamsZeroesSVOD(t *testing.T) {
	// no platform activity means no pool distribution regardless of the
	// pool size or the creator's own count
	attribution := Attribution(99999, 0)
	assert.Equal(t, 0.0, attribution)
	assert.Equal(t, 0.0, GrossSVOD(6400000, attribution))
}

func TestZeroPool(t *testing.T) {
	assert.Equal(t, 0.0, GrossSVOD(0, 0.25))
}
