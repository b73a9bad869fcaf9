package domain

import "time"

// Touchpoint is one marketing interaction within a journey
type Touchpoint struct {
	Platform     string    `json:"platform"`
	CampaignName string    `json:"campaign_name,omitempty"`
	EventType    string    `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	Revenue      *float64  `json:"revenue,omitempty"`
}

// IsPurchase reports whether the touchpoint is the terminal purchase
func (t Touchpoint) IsPurchase() bool {
	return t.EventType == EventTypePurchase
}

// CustomerJourney is the ordered touchpoint sequence leading to one purchase.
// (UserID, OrderID) is unique.
type CustomerJourney struct {
	ID                   string       `json:"id"`
	UserID               string       `json:"user_id"`
	CustomerID           string       `json:"customer_id"`
	OrderID              string       `json:"order_id"`
	OrderValue           float64      `json:"order_value"`
	Touchpoints          []Touchpoint `json:"touchpoints"`
	FirstTouchChannel    string       `json:"first_touch_channel"`
	LastTouchChannel     string       `json:"last_touch_channel"`
	JourneyDurationHours int          `json:"journey_duration_hours"`
	TouchpointCount      int          `json:"touchpoint_count"`
	PurchasedAt          time.Time    `json:"purchased_at"`
	CreatedAt            time.Time    `json:"created_at"`
}
