package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		buffer []Move
		want   Move
	}{
		{name: "majority", buffer: []Move{Rock, Rock, Paper}, want: Rock},
		{name: "empty buffer", buffer: nil, want: NoMove},
		{name: "tie goes to first seen", buffer: []Move{Rock, Paper}, want: Rock},
		{name: "tie goes to first seen reversed", buffer: []Move{Scissors, Rock, Rock, Scissors}, want: Scissors},
		{name: "late majority", buffer: []Move{Paper, Rock, Scissors, Rock}, want: Rock},
		{name: "single", buffer: []Move{Scissors}, want: Scissors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Vote(tt.buffer))
		})
	}
}

func TestStabilizer_Record(t *testing.T) {
	t.Parallel()

	t.Run("rejects below threshold", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		err := s.Record(Classification{Label: Rock, Confidence: 0.59})
		assert.ErrorIs(t, err, ErrLowConfidence)
		assert.Empty(t, s.Buffer())
	})

	t.Run("accepts at threshold", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		require.NoError(t, s.Record(Classification{Label: Rock, Confidence: 0.60}))
		assert.Equal(t, []Move{Rock}, s.Buffer())
	})

	t.Run("suppresses immediate repeats", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		for _, m := range []Move{Rock, Rock, Rock, Paper, Paper, Rock} {
			require.NoError(t, s.Record(Classification{Label: m, Confidence: 0.9}))
		}
		assert.Equal(t, []Move{Rock, Paper, Rock}, s.Buffer())
		assert.Equal(t, Rock, s.Resolve())
	})

	t.Run("rejected frames do not break repeat suppression", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		require.NoError(t, s.Record(Classification{Label: Paper, Confidence: 0.8}))
		assert.ErrorIs(t, s.Record(Classification{Label: Rock, Confidence: 0.1}), ErrLowConfidence)
		require.NoError(t, s.Record(Classification{Label: Paper, Confidence: 0.8}))
		assert.Equal(t, []Move{Paper}, s.Buffer())
	})

	t.Run("rejects sentinel label", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		assert.Error(t, s.Record(Classification{Label: NoMove, Confidence: 1}))
	})

	t.Run("reset clears buffer", func(t *testing.T) {
		t.Parallel()
		s := NewStabilizer(DefaultConfidenceThreshold)

		require.NoError(t, s.Record(Classification{Label: Scissors, Confidence: 0.7}))
		s.Reset()
		assert.Empty(t, s.Buffer())
		assert.Equal(t, NoMove, s.Resolve())
	})
}

func TestFromProbabilities(t *testing.T) {
	t.Parallel()

	t.Run("distribution", func(t *testing.T) {
		c, err := FromProbabilities(DefaultLabels, []float32{0.1, 0.7, 0.2})
		require.NoError(t, err)
		assert.Equal(t, Rock, c.Label)
		assert.InDelta(t, 0.7, c.Confidence, 1e-6)
	})

	t.Run("logits are normalized", func(t *testing.T) {
		c, err := FromProbabilities(DefaultLabels, []float32{4, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, Paper, c.Label)
		assert.Greater(t, c.Confidence, 0.9)
		assert.LessOrEqual(t, c.Confidence, 1.0)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := FromProbabilities(DefaultLabels, []float32{1, 0})
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := FromProbabilities(DefaultLabels, nil)
		assert.Error(t, err)
	})
}

func TestParseMove(t *testing.T) {
	t.Parallel()

	m, err := ParseMove(" scissors ")
	require.NoError(t, err)
	assert.Equal(t, Scissors, m)

	_, err = ParseMove("lizard")
	assert.Error(t, err)

	labels, err := ParseLabels([]string{"Paper", "Rock", "Scissors"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLabels, labels)
}
