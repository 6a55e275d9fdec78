package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/comparison"
)

// EntityKind is the classified type of an owner record.
type EntityKind string

const (
	EntityKindIndividual     EntityKind = "individual"
	EntityKindHousehold      EntityKind = "household"
	EntityKindBusiness       EntityKind = "business"
	EntityKindLegalConstruct EntityKind = "legal_construct"
)

// EntityKinds lists all kinds in a stable order.
var EntityKinds = []EntityKind{
	EntityKindIndividual,
	EntityKindHousehold,
	EntityKindBusiness,
	EntityKindLegalConstruct,
}

// Entity is a classified record from one source system. Entities are
// created once during classification and are read-only inputs to
// matching; the matcher never mutates them.
type Entity struct {
	ID            string
	TenantID      string
	SourceSystem  string
	Kind          EntityKind
	LocationID    string
	AccountNumber *AttributedValue
	Name          Name
	Address       *Address
	// Members holds household member individuals. A member may carry its
	// own address data independent of the household bundle; containment
	// is not assumed.
	Members []*Entity
}

// entityJSON is the serialized form; the name variant tag drives
// deserialization through the compile-time constructor table.
type entityJSON struct {
	ID            string           `json:"id,omitempty"`
	TenantID      string           `json:"tenant_id,omitempty"`
	SourceSystem  string           `json:"source_system,omitempty"`
	Kind          EntityKind       `json:"kind"`
	LocationID    string           `json:"location_id,omitempty"`
	AccountNumber *AttributedValue `json:"account_number,omitempty"`
	NameVariant   NameVariant      `json:"name_variant,omitempty"`
	Name          json.RawMessage  `json:"name,omitempty"`
	Address       *Address         `json:"address,omitempty"`
	Members       []*Entity        `json:"members,omitempty"`
}

// MarshalJSON serializes the entity with an explicit name-variant tag.
func (e *Entity) MarshalJSON() ([]byte, error) {
	out := entityJSON{
		ID:            e.ID,
		TenantID:      e.TenantID,
		SourceSystem:  e.SourceSystem,
		Kind:          e.Kind,
		LocationID:    e.LocationID,
		AccountNumber: e.AccountNumber,
		Address:       e.Address,
		Members:       e.Members,
	}
	if e.Name != nil {
		nameJSON, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		out.NameVariant = e.Name.Variant()
		out.Name = nameJSON
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the entity, selecting the name constructor by
// variant tag.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var in entityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.ID = in.ID
	e.TenantID = in.TenantID
	e.SourceSystem = in.SourceSystem
	e.Kind = in.Kind
	e.LocationID = in.LocationID
	e.AccountNumber = in.AccountNumber
	e.Address = in.Address
	e.Members = in.Members

	if len(in.Name) > 0 {
		construct, ok := nameConstructors[in.NameVariant]
		if !ok {
			return fmt.Errorf("unknown name variant: %q", in.NameVariant)
		}
		name := construct()
		if err := json.Unmarshal(in.Name, name); err != nil {
			return err
		}
		e.Name = name
	}
	return nil
}

// Component exposes the entity's comparable parts for pair-weighted
// scoring. Weight maps are chosen per kind pair by the match engine.
func (e *Entity) Component(name string) comparison.Comparable {
	switch name {
	case "name":
		if e.Name == nil {
			return nil
		}
		return e.Name
	case "address":
		if e.Address == nil || e.Address.IsEmpty() {
			return nil
		}
		return e.Address
	case "account":
		if e.AccountNumber == nil {
			return nil
		}
		return exactTerm{value: e.AccountNumber}
	}
	return nil
}

// DisplayName returns the rendered name, or empty when unclassified.
func (e *Entity) DisplayName() string {
	if e.Name == nil {
		return ""
	}
	return e.Name.Render()
}

// EntityRecord is the persisted form of a classified entity.
// Field order matches schema: id, tenant_id, source_system, entity_kind, ...
type EntityRecord struct {
	ID            string          `json:"id" db:"id"`
	TenantID      string          `json:"tenant_id" db:"tenant_id"`
	SourceSystem  string          `json:"source_system" db:"source_system"`
	EntityKind    EntityKind      `json:"entity_kind" db:"entity_kind"`
	LocationID    string          `json:"location_id" db:"location_id"`
	AccountNumber *string         `json:"account_number,omitempty" db:"account_number"`
	RawName       string          `json:"raw_name" db:"raw_name"`
	Data          json.RawMessage `json:"data" db:"data"`
	Fingerprint   string          `json:"fingerprint" db:"fingerprint"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// EntityListResponse is the response for listing classified entities.
type EntityListResponse struct {
	Items      []EntityRecord `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// ClassifyRequest is the request for classifying a raw owner record.
type ClassifyRequest struct {
	SourceSystem string `json:"source_system" validate:"required"`
	LocationID   string `json:"location_id" validate:"required"`
	OwnerName    string `json:"owner_name" validate:"required"`
	RawAddress   string `json:"raw_address,omitempty"`
}

// ClassificationFailureRecord reports a record no cascade rule matched.
// Never fatal to a batch; surfaced for human review.
type ClassificationFailureRecord struct {
	ID           string    `json:"id" db:"id"`
	TenantID     string    `json:"tenant_id" db:"tenant_id"`
	SourceSystem string    `json:"source_system" db:"source_system"`
	LocationID   string    `json:"location_id" db:"location_id"`
	RawName      string    `json:"raw_name" db:"raw_name"`
	Reason       string    `json:"reason" db:"reason"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at" db:"last_seen_at"`
}
