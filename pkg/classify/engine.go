// Package classify maps raw owner-name strings to typed entities through
// an ordered rule cascade. Evaluation is top to bottom, first match wins:
// no rule re-entry, no backtracking. The catch-all household rule is
// intentionally the most general and must stay last; promoting it above
// a specific rule silently misclassifies structured households.
package classify

import (
	"fmt"

	"github.com/Gobusters/ectologger"
)

// Input is one raw owner record to classify.
type Input struct {
	TenantID     string
	SourceSystem string
	LocationID   string
	RawName      string
	// Position is the record's position within its source, retained as
	// provenance on every attributed value built from it.
	Position int
}

// ClassificationError reports that no cascade rule matched. It is
// per-record and never fatal to a batch.
type ClassificationError struct {
	RawName string
	Reason  string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for %q: %s", e.RawName, e.Reason)
}

// Engine is the name classification engine. Construct once and reuse;
// the rule table and qualifier sets are immutable after construction.
type Engine struct {
	logger     ectologger.Logger
	qualifiers map[string]struct{}
	legal      map[string]struct{}
	rules      []rule
}

// rule is one ordered predicate-to-classification mapping.
type rule struct {
	name    string
	applies func(sig signature) bool
	build   func(in Input, sig signature) (*Classification, error)
}

// NewEngine creates a classification engine with the default qualifier
// word lists.
func NewEngine(logger ectologger.Logger) *Engine {
	return NewEngineWithQualifiers(logger, defaultQualifierWords, legalConstructWords)
}

// NewEngineWithQualifiers creates an engine with curated qualifier lists,
// e.g. per-tenant lists loaded from the match configuration.
func NewEngineWithQualifiers(logger ectologger.Logger, qualifierWords, legalWords []string) *Engine {
	e := &Engine{
		logger:     logger,
		qualifiers: toSet(qualifierWords),
		legal:      toSet(legalWords),
	}
	e.rules = e.buildRules()
	return e
}

// Classify maps a raw owner-name string to exactly one typed entity. At
// most one rule fires. A nil entity with a *ClassificationError means no
// rule matched; the caller excludes the record and reports the failure.
func (e *Engine) Classify(in Input) (*Classification, error) {
	sig := e.buildSignature(in.RawName)

	if sig.wordCount == 0 {
		return nil, &ClassificationError{RawName: in.RawName, Reason: "empty name"}
	}

	for _, r := range e.rules {
		if !r.applies(sig) {
			continue
		}

		result, err := r.build(in, sig)
		if err != nil {
			return nil, &ClassificationError{RawName: sig.raw, Reason: err.Error()}
		}

		if e.logger != nil {
			e.logger.WithFields(map[string]any{
				"rule":        r.name,
				"entity_kind": result.Entity.Kind,
				"location_id": in.LocationID,
			}).Debug("Classified owner name")
		}

		result.Rule = r.name
		return result, nil
	}

	return nil, &ClassificationError{RawName: sig.raw, Reason: "no cascade rule matched"}
}
