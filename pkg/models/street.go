package models

import "time"

// AliasCategory classifies a street alias term.
type AliasCategory string

const (
	// AliasCategoryHomonym is an accepted spelling variant; counts toward
	// address matching.
	AliasCategoryHomonym AliasCategory = "homonym"
	// AliasCategorySynonym is a known-equivalent name (e.g. a renamed
	// road); valid for display/resolution but excluded from
	// address-matching scores by business rule.
	AliasCategorySynonym AliasCategory = "synonym"
	// AliasCategoryCandidate is an unconfirmed variant pending curator
	// review.
	AliasCategoryCandidate AliasCategory = "candidate"
)

// AliasSource records where an alias term came from.
type AliasSource string

const (
	AliasSourceBulkImport AliasSource = "bulk_import"
	// AliasSourceManualEdit tags terms added by a human curator so
	// automated re-ingestion can distinguish curator input.
	AliasSourceManualEdit AliasSource = "manual_edit"
)

// StreetAlias is one alias term of a canonical street entry.
type StreetAlias struct {
	Term   string      `json:"term"`
	Source AliasSource `json:"source"`
}

// StreetEntry is one real-world street: an authoritative primary term plus
// homonym, synonym, and candidate alias sets.
type StreetEntry struct {
	ID         string        `json:"id"`
	Primary    string        `json:"primary"`
	Source     AliasSource   `json:"source,omitempty"`
	Homonyms   []StreetAlias `json:"homonyms,omitempty"`
	Synonyms   []StreetAlias `json:"synonyms,omitempty"`
	Candidates []StreetAlias `json:"candidates,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Aliases returns the alias set for a category.
func (e *StreetEntry) Aliases(category AliasCategory) []StreetAlias {
	switch category {
	case AliasCategoryHomonym:
		return e.Homonyms
	case AliasCategorySynonym:
		return e.Synonyms
	case AliasCategoryCandidate:
		return e.Candidates
	}
	return nil
}

// StreetRow is the persisted form of a canonical street.
// Field order matches schema: id, tenant_id, primary_term, ...
type StreetRow struct {
	ID          string     `json:"id" db:"id"`
	TenantID    string     `json:"tenant_id" db:"tenant_id"`
	PrimaryTerm string     `json:"primary_term" db:"primary_term"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// StreetAliasRow is the persisted form of one alias term.
type StreetAliasRow struct {
	ID        string        `json:"id" db:"id"`
	TenantID  string        `json:"tenant_id" db:"tenant_id"`
	StreetID  string        `json:"street_id" db:"street_id"`
	Term      string        `json:"term" db:"term"`
	Category  AliasCategory `json:"category" db:"category"`
	Source    AliasSource   `json:"source" db:"source"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// CreateStreetRequest is the request for creating a canonical street.
type CreateStreetRequest struct {
	Term string `json:"term" validate:"required"`
}

// AddAliasRequest is the request for appending an alias to a street.
type AddAliasRequest struct {
	Term     string        `json:"term" validate:"required"`
	Category AliasCategory `json:"category" validate:"required,oneof=homonym synonym candidate"`
}
