package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cashflow/internal/core"
)

// RefreshMessage asks the worker to recompute a projection from the stored
// dataset and export it. A zero Anchor or Horizon means the worker's
// configured default.
type RefreshMessage struct {
	ID        string     `json:"id"`
	Anchor    core.Month `json:"anchor"`
	Horizon   int        `json:"horizon"`
	Source    string     `json:"source,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewRefreshMessage creates a refresh message with a fresh ID.
func NewRefreshMessage(anchor core.Month, horizon int, source string) *RefreshMessage {
	return &RefreshMessage{
		ID:        uuid.NewString(),
		Anchor:    anchor,
		Horizon:   horizon,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes and checks a message body.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	if msg.Horizon < 0 {
		return nil, fmt.Errorf("negative horizon %d", msg.Horizon)
	}
	return &msg, nil
}
