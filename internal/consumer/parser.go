package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct {
	now func() time.Time
}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{now: time.Now}
}

// Parse parses a JSON message body into a RawEvent
func (p *JSONEventParser) Parse(body []byte) (*domain.RawEvent, error) {
	var msg queue.EventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	switch {
	case msg.EventID == "":
		return nil, fmt.Errorf("message is missing event_id")
	case msg.UserID == "":
		return nil, fmt.Errorf("message is missing user_id")
	case msg.EventType == "":
		return nil, fmt.Errorf("message is missing event_type")
	case msg.Platform == "":
		return nil, fmt.Errorf("message is missing platform")
	case msg.EventTimestamp <= 0:
		return nil, fmt.Errorf("message has invalid event_timestamp: %d", msg.EventTimestamp)
	}

	var customerID *string
	if msg.CustomerID != "" {
		id := msg.CustomerID
		customerID = &id
	}

	now := p.now()
	event := &domain.RawEvent{
		EventID:        msg.EventID,
		UserID:         msg.UserID,
		CustomerID:     customerID,
		EventType:      msg.EventType,
		Platform:       msg.Platform,
		CampaignID:     msg.CampaignID,
		CampaignName:   msg.CampaignName,
		AdGroupID:      msg.AdGroupID,
		AdID:           msg.AdID,
		PageURL:        msg.PageURL,
		Referrer:       msg.Referrer,
		Revenue:        msg.Revenue,
		EventTimestamp: time.Unix(msg.EventTimestamp, 0).UTC(),
		ProcessedAt:    now.UTC(),
		Version:        uint64(now.UnixNano()),
	}

	return event, nil
}
