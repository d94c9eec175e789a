package events

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the usage stream.
const (
	KindCheckIn         = "subscription_check_in"
	KindCheckOut        = "subscription_check_out"
	KindInvestmentUsage = "investment_usage"
)

// UsageEvent is the lightweight message published whenever a usage record
// changes. It carries identifiers only; the worker reads the full row from
// the database when it needs more.
type UsageEvent struct {
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	EntityID   int64     `json:"entity_id"`
	OccurredOn string    `json:"occurred_on"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewUsageEvent(userID, kind string, entityID int64, occurredOn string) *UsageEvent {
	return &UsageEvent{
		UserID:     userID,
		Kind:       kind,
		EntityID:   entityID,
		OccurredOn: occurredOn,
		Timestamp:  time.Now(),
	}
}

func (m *UsageEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func UsageEventFromJSON(data []byte) (*UsageEvent, error) {
	var msg UsageEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
