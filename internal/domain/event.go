package domain

import "time"

// EventTypePurchase terminates a customer journey
const EventTypePurchase = "purchase"

// RawEvent represents a single customer interaction stored in ClickHouse
type RawEvent struct {
	EventID        string    `ch:"event_id"`
	UserID         string    `ch:"user_id"`
	CustomerID     *string   `ch:"customer_id"`
	EventType      string    `ch:"event_type"`
	Platform       string    `ch:"platform"`
	CampaignID     string    `ch:"campaign_id"`
	CampaignName   string    `ch:"campaign_name"`
	AdGroupID      string    `ch:"ad_group_id"`
	AdID           string    `ch:"ad_id"`
	PageURL        string    `ch:"page_url"`
	Referrer       string    `ch:"referrer"`
	Revenue        *float64  `ch:"revenue"`
	EventTimestamp time.Time `ch:"event_timestamp"`
	ProcessedAt    time.Time `ch:"processed_at"`
	Version        uint64    `ch:"version"`
}

// IsPurchase reports whether the event closes a journey
func (e *RawEvent) IsPurchase() bool {
	return e.EventType == EventTypePurchase
}

// HasCustomer reports whether the event can join a journey
func (e *RawEvent) HasCustomer() bool {
	return e.CustomerID != nil && *e.CustomerID != ""
}
