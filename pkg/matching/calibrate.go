package matching

import (
	"fmt"
	"sort"

	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	// gapFactor is how many times larger than the mean adjacent gap a gap
	// must be to count as a natural break in the score distribution.
	gapFactor = 5.0
	// gapMinWidth filters out breaks that are statistically large but too
	// narrow to be a usable threshold.
	gapMinWidth = 0.02
)

// Calibrate proposes score thresholds from an observed distribution,
// optionally refined by human-labeled samples.
//
// Unsupervised: scores are sorted and scanned for natural breaks, gaps
// at least gapFactor times the mean adjacent gap and at least
// gapMinWidth wide. The lowest break becomes the proposed minimum and
// the highest the high-confidence threshold.
//
// Labeled refinement: when reviewed pairs are supplied, the proposal
// narrows to the midpoint between the highest confirmed-false score and
// the lowest confirmed-true score. If those ranges overlap the proposal
// is flagged ambiguous, meaning no single threshold separates this
// comparison type and the pairing needs its own floor.
func Calibrate(req models.CalibrationRequest) (*models.CalibrationProposal, error) {
	if len(req.Scores) < 2 {
		return nil, fmt.Errorf("calibration requires at least 2 scores, got %d", len(req.Scores))
	}

	scores := append([]float64(nil), req.Scores...)
	sort.Float64s(scores)

	proposal := &models.CalibrationProposal{
		MinimumScore:        scores[len(scores)/2],
		HighConfidenceScore: scores[len(scores)-1],
	}

	gaps := findGapMidpoints(scores)
	if len(gaps) > 0 {
		proposal.GapScores = gaps
		proposal.MinimumScore = gaps[0]
		proposal.HighConfidenceScore = gaps[len(gaps)-1]
	}

	if len(req.Labeled) > 0 {
		refineFromLabels(proposal, req.Labeled)
	}

	return proposal, nil
}

func findGapMidpoints(sorted []float64) []float64 {
	n := len(sorted)
	totalSpread := sorted[n-1] - sorted[0]
	if totalSpread == 0 {
		return nil
	}
	meanGap := totalSpread / float64(n-1)

	var midpoints []float64
	for i := 1; i < n; i++ {
		gap := sorted[i] - sorted[i-1]
		if gap >= gapFactor*meanGap && gap >= gapMinWidth {
			midpoints = append(midpoints, sorted[i-1]+gap/2)
		}
	}
	return midpoints
}

func refineFromLabels(proposal *models.CalibrationProposal, labeled []models.CalibrationSample) {
	var (
		maxFalse float64
		minTrue  float64
		sawFalse bool
		sawTrue  bool
	)
	for _, sample := range labeled {
		if sample.IsMatch {
			if !sawTrue || sample.Score < minTrue {
				minTrue = sample.Score
			}
			sawTrue = true
		} else {
			if !sawFalse || sample.Score > maxFalse {
				maxFalse = sample.Score
			}
			sawFalse = true
		}
	}

	if sawFalse {
		f := maxFalse
		proposal.MaxFalseScore = &f
	}
	if sawTrue {
		t := minTrue
		proposal.MinTrueScore = &t
	}
	if !sawFalse || !sawTrue {
		return
	}

	if maxFalse >= minTrue {
		proposal.Ambiguous = true
		return
	}
	proposal.MinimumScore = maxFalse + (minTrue-maxFalse)/2
}
