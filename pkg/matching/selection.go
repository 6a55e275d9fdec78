package matching

import (
	"math"
	"sort"

	"github.com/Ramsey-B/fern/pkg/models"
)

// selectCandidates applies the adaptive selection policy to one scored
// pool: take whichever is larger of the percentile-threshold survivors
// and the top MinimumGroupSize, then drop anything under the pair floor
// or the global floor. Output is ordered by score descending.
func selectCandidates(scored []models.CandidateInfo, cfg models.MatchConfig, pairFloor float64) []models.CandidateInfo {
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	cutoff := percentile(scored, cfg.PercentileThreshold)
	keep := 0
	for keep < len(scored) && scored[keep].Score >= cutoff {
		keep++
	}
	if cfg.MinimumGroupSize > keep {
		keep = cfg.MinimumGroupSize
	}
	if keep > len(scored) {
		keep = len(scored)
	}

	floor := pairFloor
	if cfg.GlobalMinimumScore > floor {
		floor = cfg.GlobalMinimumScore
	}

	out := make([]models.CandidateInfo, 0, keep)
	for _, c := range scored[:keep] {
		if c.Score < floor {
			break
		}
		out = append(out, c)
	}
	return out
}

// percentile returns the nearest-rank percentile score of a pool sorted
// descending. p is in (0, 100].
func percentile(sortedDesc []models.CandidateInfo, p float64) float64 {
	n := len(sortedDesc)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sortedDesc[n-1].Score
	}
	if p > 100 {
		p = 100
	}
	// Nearest-rank on the ascending distribution, then mapped back to the
	// descending slice.
	rank := int(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	return sortedDesc[n-rank].Score
}
