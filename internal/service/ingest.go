package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/powerlab/transistordb/internal/domain"
)

// IngestService decodes double-pulse-test measurements arriving over MQTT
// and attaches them to the named transistor record.
type IngestService struct {
	manager *Manager
}

// NewIngestService wraps a manager for measurement ingest.
func NewIngestService(m *Manager) *IngestService {
	return &IngestService{manager: m}
}

// FromMQTT handles one broker message. The payload is a JSON envelope
// naming the target transistor plus the raw measurement record.
func (s *IngestService) FromMQTT(topic string, payload []byte) error {
	var msg struct {
		Transistor  string                    `json:"transistor"`
		Measurement domain.RawMeasurementData `json:"measurement"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("measurement payload on %s: %w", topic, err)
	}
	if msg.Transistor == "" {
		return fmt.Errorf("measurement payload on %s: missing transistor name", topic)
	}
	return s.manager.AttachMeasurement(context.Background(), msg.Transistor, msg.Measurement)
}
