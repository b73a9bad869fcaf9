package queue

// EventMessage is the queue body shared by the API publisher and the consumer
type EventMessage struct {
	EventID        string   `json:"event_id"`
	UserID         string   `json:"user_id"`
	CustomerID     string   `json:"customer_id,omitempty"`
	EventType      string   `json:"event_type"`
	Platform       string   `json:"platform"`
	CampaignID     string   `json:"campaign_id,omitempty"`
	CampaignName   string   `json:"campaign_name,omitempty"`
	AdGroupID      string   `json:"ad_group_id,omitempty"`
	AdID           string   `json:"ad_id,omitempty"`
	PageURL        string   `json:"page_url,omitempty"`
	Referrer       string   `json:"referrer,omitempty"`
	Revenue        *float64 `json:"revenue,omitempty"`
	EventTimestamp int64    `json:"event_timestamp"`
}
