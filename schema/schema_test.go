package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingRoundTrip(t *testing.T) {
	assert.True(t, IsMissing(Missing()))
	assert.False(t, IsMissing(0))
	assert.False(t, IsMissing(math.Inf(1)))
}

func TestNormalizedTrackHelpers(t *testing.T) {
	track := &NormalizedTrack{
		Landmarks: []string{"Midback"},
		Samples: map[string][]NormPoint{
			"Midback": {
				{X: 0.1, Y: 0.1, Valid: true},
				{X: Missing(), Y: Missing(), Valid: false},
				{X: 0.2, Y: 0.2, Valid: true},
			},
		},
	}
	assert.Equal(t, 3, track.FrameCount())
	assert.Equal(t, 2, track.ValidCount("Midback"))

	_, ok := track.Series("Midback")
	assert.True(t, ok)
	_, ok = track.Series("Head")
	assert.False(t, ok)
}

func TestSignificanceLabel(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want string
	}{
		{name: "very strong", p: 0.0004, want: "***"},
		{name: "strong", p: 0.004, want: "**"},
		{name: "significant", p: 0.04, want: "*"},
		{name: "boundary is not significant", p: 0.05, want: "n.s."},
		{name: "not significant", p: 0.5, want: "n.s."},
		{name: "undefined", p: math.NaN(), want: "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignificanceLabel(tt.p))
		})
	}
}

func TestGroupStatDefined(t *testing.T) {
	assert.True(t, GroupStat{N: 3, Mean: 1.5}.Defined())
	assert.False(t, GroupStat{N: 0, Mean: Missing()}.Defined())
	assert.False(t, GroupStat{N: 2, Mean: Missing()}.Defined())
}
