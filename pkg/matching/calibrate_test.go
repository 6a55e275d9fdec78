package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestCalibrate_Unsupervised(t *testing.T) {
	t.Run("rejects too few scores", func(t *testing.T) {
		_, err := Calibrate(models.CalibrationRequest{Scores: []float64{0.9}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 2 scores")
	})

	t.Run("natural break becomes the proposed threshold", func(t *testing.T) {
		// Two tight clusters with a wide gap between them. The gap midpoint
		// is both the proposed minimum and high-confidence threshold.
		req := models.CalibrationRequest{
			Scores: []float64{0.2, 0.22, 0.24, 0.26, 0.8, 0.82, 0.84},
		}

		proposal, err := Calibrate(req)
		require.NoError(t, err)

		require.Len(t, proposal.GapScores, 1)
		assert.InDelta(t, 0.53, proposal.GapScores[0], 1e-9)
		assert.InDelta(t, 0.53, proposal.MinimumScore, 1e-9)
		assert.InDelta(t, 0.53, proposal.HighConfidenceScore, 1e-9)
		assert.False(t, proposal.Ambiguous)
	})

	t.Run("flat distribution falls back to median and max", func(t *testing.T) {
		proposal, err := Calibrate(models.CalibrationRequest{Scores: []float64{0.7, 0.5, 0.6}})
		require.NoError(t, err)

		assert.Empty(t, proposal.GapScores)
		assert.Equal(t, 0.6, proposal.MinimumScore)
		assert.Equal(t, 0.7, proposal.HighConfidenceScore)
	})

	t.Run("identical scores propose that score", func(t *testing.T) {
		proposal, err := Calibrate(models.CalibrationRequest{Scores: []float64{0.7, 0.7, 0.7}})
		require.NoError(t, err)

		assert.Equal(t, 0.7, proposal.MinimumScore)
		assert.Equal(t, 0.7, proposal.HighConfidenceScore)
	})
}

func TestCalibrate_LabeledRefinement(t *testing.T) {
	t.Run("separable labels move the threshold to the midpoint", func(t *testing.T) {
		req := models.CalibrationRequest{
			Scores: []float64{0.3, 0.9},
			Labeled: []models.CalibrationSample{
				{Score: 0.55, IsMatch: false},
				{Score: 0.6, IsMatch: false},
				{Score: 0.8, IsMatch: true},
				{Score: 0.82, IsMatch: true},
			},
		}

		proposal, err := Calibrate(req)
		require.NoError(t, err)

		require.NotNil(t, proposal.MaxFalseScore)
		assert.Equal(t, 0.6, *proposal.MaxFalseScore)
		require.NotNil(t, proposal.MinTrueScore)
		assert.Equal(t, 0.8, *proposal.MinTrueScore)
		assert.InDelta(t, 0.7, proposal.MinimumScore, 1e-9)
		assert.False(t, proposal.Ambiguous)
	})

	t.Run("overlapping labels flag the pairing as ambiguous", func(t *testing.T) {
		req := models.CalibrationRequest{
			Scores: []float64{0.3, 0.9},
			Labeled: []models.CalibrationSample{
				{Score: 0.85, IsMatch: false},
				{Score: 0.8, IsMatch: true},
			},
		}

		proposal, err := Calibrate(req)
		require.NoError(t, err)

		assert.True(t, proposal.Ambiguous)
		// The unsupervised proposal survives untouched.
		assert.Equal(t, 0.9, proposal.MinimumScore)
	})

	t.Run("one-sided labels record bounds but keep the proposal", func(t *testing.T) {
		req := models.CalibrationRequest{
			Scores: []float64{0.3, 0.9},
			Labeled: []models.CalibrationSample{
				{Score: 0.8, IsMatch: true},
			},
		}

		proposal, err := Calibrate(req)
		require.NoError(t, err)

		assert.Nil(t, proposal.MaxFalseScore)
		require.NotNil(t, proposal.MinTrueScore)
		assert.Equal(t, 0.8, *proposal.MinTrueScore)
		assert.Equal(t, 0.9, proposal.MinimumScore)
		assert.False(t, proposal.Ambiguous)
	})
}
