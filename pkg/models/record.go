package models

import "time"

// SourceRecordMessage is an incoming raw record from one of the two
// source systems (property/assessor or donor). OwnerName and RawAddress
// are populated by the upstream mapper when it knows the source layout;
// otherwise the processor extracts them from Data using the configured
// field paths.
type SourceRecordMessage struct {
	TenantID     string         `json:"tenant_id"`
	SourceSystem string         `json:"source_system"`
	LocationID   string         `json:"location_id"`
	ExecutionID  string         `json:"execution_id,omitempty"`
	OwnerName    string         `json:"owner_name,omitempty"`
	RawAddress   string         `json:"raw_address,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Data         map[string]any `json:"data,omitempty"`
}
