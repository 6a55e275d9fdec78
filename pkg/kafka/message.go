package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers and, once
// ParseSourceRecord succeeds, the decoded source record.
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	Record *models.SourceRecordMessage
}

// ParseSourceRecord decodes the message body as a source record and
// validates the fields the processor cannot work without.
func (m *IncomingMessage) ParseSourceRecord() error {
	var record models.SourceRecordMessage
	if err := json.Unmarshal(m.Value, &record); err != nil {
		return fmt.Errorf("failed to decode source record: %w", err)
	}

	if record.TenantID == "" {
		record.TenantID = m.Headers["tenant_id"]
	}
	if record.TenantID == "" {
		return fmt.Errorf("source record missing tenant_id")
	}
	if record.SourceSystem == "" {
		return fmt.Errorf("source record missing source_system")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = m.Timestamp
	}

	m.Record = &record
	return nil
}

// IsExecutionCompleted reports whether this is a pipeline coordination
// marker rather than a data record. The upstream loader sends one per
// ingestion run so the matcher knows a batch is complete.
func (m *IncomingMessage) IsExecutionCompleted() bool {
	return m.Headers["message_type"] == "execution.completed"
}

// ExecutionID returns the ingestion run ID from headers or the record.
func (m *IncomingMessage) ExecutionID() string {
	if id := m.Headers["execution_id"]; id != "" {
		return id
	}
	if m.Record != nil {
		return m.Record.ExecutionID
	}
	return ""
}
