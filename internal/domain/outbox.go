package domain

import (
	"encoding/json"
	"time"
)

// OutboxEntry is the durable record of one domain event. It is created in
// the same transaction as the aggregate write and mutated only by the
// projector. DELIVERED is terminal; FAILED entries are retried on later
// cycles. Entries are never deleted; delivered entries remain for
// audit and replay.
type OutboxEntry struct {
	ID          int64
	OrderID     OrderID
	Topic       string
	Payload     json.RawMessage
	Status      OutboxStatus
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}
