package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/vfind/video"
)

func sampleRecord() *video.Metadata {
	return &video.Metadata{
		Filename:  "movie_TRAILER_2.mp4",
		Container: "mp4",
		Duration:  5,
		Size:      50,
		Bitrate:   128000,
		Width:     1920,
		Height:    1080,
		Framerate: 29.97,
	}
}

func TestEvaluateEmptyQueryMatchesEverything(t *testing.T) {
	q := &Query{}
	assert.True(t, q.Evaluate(sampleRecord()))
	assert.True(t, q.Evaluate(&video.Metadata{}))
}

// TestEvaluateFlatFolding verifies the left-to-right fold with equal
// AND/OR binding: a trailing OR-true filter overrides an earlier AND-false
// chain, because there is no AND-over-OR precedence.
func TestEvaluateFlatFolding(t *testing.T) {
	q, err := Parse([]string{"-size", ">100", "-a", "-duration", "<10", "-o", "-container", "=mp4"})
	require.NoError(t, err)

	// size=50 fails, duration=5 passes (false AND true = false),
	// container=mp4 passes (false OR true = true).
	assert.True(t, q.Evaluate(sampleRecord()))

	// Conventional precedence (AND binds tighter) would give the same
	// record a different fate under the reversed query; check the fold
	// stays literal there too: mp4 OR size<100 AND duration>100 folds to
	// (true OR true) AND false = false, not true OR (true AND false).
	q2, err := Parse([]string{"-container", "=mp4", "-o", "-size", "<100", "-a", "-duration", ">100"})
	require.NoError(t, err)
	assert.False(t, q2.Evaluate(sampleRecord()))
}

func TestEvaluateNumericOperators(t *testing.T) {
	md := sampleRecord()

	tests := []struct {
		name   string
		tokens []string
		want   bool
	}{
		{"equal exact match", []string{"-bitrate", "=128000"}, true},
		{"equal exact mismatch by one", []string{"-bitrate", "=128001"}, false},
		{"not equal", []string{"-bitrate", "!=128001"}, true},
		{"greater", []string{"-width", ">1280"}, true},
		{"greater failing on equality", []string{"-width", ">1920"}, false},
		{"greater or equal on boundary", []string{"-width", ">=1920"}, true},
		{"less", []string{"-duration", "<10"}, true},
		{"less or equal on boundary", []string{"-duration", "<=5"}, true},
		{"framerate fractional", []string{"-framerate", ">=29.97"}, true},
		{"duration with unit", []string{"-duration", "<1:min"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Evaluate(md))
		})
	}
}

func TestEvaluateTextOperators(t *testing.T) {
	md := sampleRecord()

	tests := []struct {
		name   string
		tokens []string
		want   bool
	}{
		{"contains is case-insensitive", []string{"-filename", "contains", "Trailer"}, true},
		{"contains mismatch", []string{"-filename", "contains", "teaser"}, false},
		{"filename full match", []string{"-filename", "=movie_trailer_2.mp4"}, true},
		{"filename equality is not substring", []string{"-filename", "=trailer"}, false},
		{"container equality is case-insensitive", []string{"-container", "=MP4"}, true},
		{"container mismatch", []string{"-container", "=mkv"}, false},
		{"container containment", []string{"-container", "contains", "mp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Evaluate(md))
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	q, err := Parse([]string{"-size", ">10", "-o", "-duration", "<10", "-a", "-container", "=mp4"})
	require.NoError(t, err)

	md := sampleRecord()
	first := q.Evaluate(md)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, q.Evaluate(md))
	}
}

// naiveFold evaluates every filter unconditionally, the reference the
// short-circuiting evaluator must agree with.
func naiveFold(q *Query, md *video.Metadata) bool {
	if len(q.Filters) == 0 {
		return true
	}
	acc := q.Filters[0].matches(md)
	for i := 1; i < len(q.Filters); i++ {
		cur := q.Filters[i].matches(md)
		if q.Connectives[i-1] == And {
			acc = acc && cur
		} else {
			acc = acc || cur
		}
	}
	return acc
}

func TestEvaluateAgreesWithUnconditionalFold(t *testing.T) {
	queries := [][]string{
		{"-size", ">100", "-a", "-duration", ">100", "-a", "-width", ">100"},
		{"-size", ">100", "-a", "-duration", ">100", "-o", "-container", "=mp4"},
		{"-container", "=mp4", "-o", "-size", ">100", "-o", "-duration", ">100"},
		{"-container", "=mp4", "-o", "-size", ">100", "-a", "-duration", "<10"},
		{"-size", ">100", "-a", "-width", "<10", "-a", "-height", ">10", "-o", "-framerate", ">=20"},
	}

	records := []*video.Metadata{
		sampleRecord(),
		{},
		{Container: "mkv", Duration: 7200, Size: 1 << 30, Width: 3840, Height: 2160, Framerate: 60},
	}

	for _, tokens := range queries {
		q, err := Parse(tokens)
		require.NoError(t, err)
		for _, md := range records {
			assert.Equal(t, naiveFold(q, md), q.Evaluate(md), "query %v on %+v", tokens, md)
		}
	}
}

func TestUniformFrom(t *testing.T) {
	conns := []Connective{And, And, Or, And}
	assert.False(t, uniformFrom(conns, 0, And))
	assert.True(t, uniformFrom(conns, 3, And))
	assert.False(t, uniformFrom(conns, 2, And))
	assert.True(t, uniformFrom(conns, 4, And)) // empty suffix
	assert.True(t, uniformFrom([]Connective{Or, Or}, 0, Or))
}

// A query violating the filter/connective alternation invariant indicates a
// parser bug and must fail loudly.
func TestEvaluatePanicsOnInvariantViolation(t *testing.T) {
	q := &Query{
		Filters: []Filter{
			{Attribute: AttrSize, Operator: OpGreater, Number: 1},
			{Attribute: AttrSize, Operator: OpLess, Number: 2},
		},
	}
	assert.Panics(t, func() { q.Evaluate(sampleRecord()) })
}
