package types

import "time"

// AlertMessage is the SQS payload emitted for every verified webhook alert.
// Downstream consumers switch on AlertName and decode Fields with the same
// closed alert set the receiver uses.
type AlertMessage struct {
	// MessageID is generated by the receiver; consumers use it for dedup.
	MessageID string `json:"message_id"`

	AlertName string `json:"alert_name"`
	// AlertID is the vendor's alert_id; empty for locker_processed.
	AlertID string `json:"alert_id,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
	RequestID  string    `json:"request_id,omitempty"`

	// Fields is the verified payload minus p_signature.
	Fields map[string]any `json:"fields"`
}
