package model

import "time"

// Delivery is one inbound webhook HTTP call
type Delivery struct {
	ID         string    // Retrieved from X-GitHub-Delivery header
	Event      string    // Retrieved from X-GitHub-Event header
	ReceivedAt time.Time // Time when the delivery was received
	Payload    []byte    // Raw JSON payload
}

// DeliveryLogEntry is appended once per delivery and never mutated
type DeliveryLogEntry struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Kind       EventKind `json:"kind"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    []byte    `json:"-"`
}

// DeliverySummary is the observability view of the delivery log
type DeliverySummary struct {
	Counts map[string]int    `json:"counts"`
	Last   *DeliveryLogEntry `json:"last,omitempty"`
}
