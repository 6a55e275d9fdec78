package models

import (
	"fmt"
	"strings"
	"time"
)

// KindPair identifies a (source kind, target kind) comparison pairing.
// Serializes as "source:target" so it can key JSON maps in stored configs.
type KindPair struct {
	Source EntityKind
	Target EntityKind
}

func (p KindPair) String() string {
	return string(p.Source) + ":" + string(p.Target)
}

// MarshalText implements encoding.TextMarshaler for JSON map keys.
func (p KindPair) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *KindPair) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid kind pair: %q", string(text))
	}
	p.Source = EntityKind(parts[0])
	p.Target = EntityKind(parts[1])
	return nil
}

// MatchConfig drives best-match selection.
type MatchConfig struct {
	// PercentileThreshold is the batch score percentile (0-100) a
	// candidate must reach, subject to MinimumGroupSize.
	PercentileThreshold float64 `json:"percentile_threshold"`
	// MinimumGroupSize guarantees at least this many candidates surface
	// even when the score distribution is flat.
	MinimumGroupSize int `json:"minimum_group_size"`
	// GlobalMinimumScore is the floor below which no match is reported
	// regardless of relative ranking.
	GlobalMinimumScore float64 `json:"global_minimum_score"`
	// PerKindPairMinimums are hard floors per comparison pairing;
	// same-kind comparisons are less noisy and carry stricter cutoffs.
	PerKindPairMinimums map[KindPair]float64 `json:"per_kind_pair_minimums,omitempty"`
}

// DefaultMatchConfig returns the deployed selection defaults.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		PercentileThreshold: 98,
		MinimumGroupSize:    10,
		GlobalMinimumScore:  0.5,
		PerKindPairMinimums: map[KindPair]float64{
			{EntityKindIndividual, EntityKindIndividual}: 0.75,
			{EntityKindIndividual, EntityKindHousehold}:  0.65,
			{EntityKindHousehold, EntityKindIndividual}:  0.65,
			{EntityKindHousehold, EntityKindHousehold}:   0.7,
		},
	}
}

// PairMinimum returns the floor for a kind pair, falling back to the
// global minimum.
func (c MatchConfig) PairMinimum(source, target EntityKind) float64 {
	if m, ok := c.PerKindPairMinimums[KindPair{Source: source, Target: target}]; ok {
		return m
	}
	return c.GlobalMinimumScore
}

// CandidateInfo is one scored candidate match.
type CandidateInfo struct {
	EntityID        string             `json:"entity_id"`
	LocationID      string             `json:"location_id,omitempty"`
	Score           float64            `json:"score"`
	ComponentScores map[string]float64 `json:"component_scores,omitempty"`
}

// MatchResult holds the selected matches for one base entity, ordered by
// score descending within each target kind.
type MatchResult struct {
	BaseEntityID  string                         `json:"base_entity_id"`
	MatchesByKind map[EntityKind][]CandidateInfo `json:"matches_by_kind"`
	TotalMatches  int                            `json:"total_matches"`
}

// MatchCandidate represents a persisted potential match between two
// entities, pending review.
type MatchCandidate struct {
	ID                string     `json:"id" db:"id"`
	TenantID          string     `json:"tenant_id" db:"tenant_id"`
	SourceEntityID    string     `json:"source_entity_id" db:"source_entity_id"`
	CandidateEntityID string     `json:"candidate_entity_id" db:"candidate_entity_id"`
	CandidateKind     EntityKind `json:"candidate_kind" db:"candidate_kind"`
	MatchScore        float64    `json:"match_score" db:"match_score"`
	MatchDetails      string     `json:"match_details" db:"match_details"`
	Status            string     `json:"status" db:"status"` // pending, approved, rejected, deferred
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy        *string    `json:"resolved_by,omitempty" db:"resolved_by"`
}

// MatchCandidateStatus constants
const (
	MatchCandidateStatusPending  = "pending"
	MatchCandidateStatusApproved = "approved"
	MatchCandidateStatusRejected = "rejected"
	MatchCandidateStatusDeferred = "deferred"
)

// MatchConfigRecord is the persisted per-tenant selector configuration
// plus the curated institution and qualifier word lists.
type MatchConfigRecord struct {
	ID             string    `json:"id" db:"id"`
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	Config         []byte    `json:"config" db:"config"`
	ExclusionNames []byte    `json:"exclusion_names" db:"exclusion_names"`
	QualifierTerms []byte    `json:"qualifier_terms" db:"qualifier_terms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CalibrationSample is one labeled score from a human-reviewed pair.
type CalibrationSample struct {
	Score   float64 `json:"score"`
	IsMatch bool    `json:"is_match"`
}

// CalibrationRequest asks for data-driven threshold proposals.
type CalibrationRequest struct {
	Scores  []float64           `json:"scores" validate:"required,min=2"`
	Labeled []CalibrationSample `json:"labeled,omitempty"`
}

// CalibrationProposal is the calibrator's output. Ambiguous is true when
// confirmed true/false score ranges overlap, signaling that a single
// threshold policy is insufficient for this comparison type.
type CalibrationProposal struct {
	MinimumScore        float64   `json:"minimum_score"`
	HighConfidenceScore float64   `json:"high_confidence_score"`
	GapScores           []float64 `json:"gap_scores,omitempty"`
	Ambiguous           bool      `json:"ambiguous"`
	MaxFalseScore       *float64  `json:"max_false_score,omitempty"`
	MinTrueScore        *float64  `json:"min_true_score,omitempty"`
}
