package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agripledge-backend/internal/domain/loan"
)

type EventKind string

const (
	EventApplicationReceived EventKind = "loan.application_received"
	EventApproved            EventKind = "loan.approved"
	EventRejected            EventKind = "loan.rejected"
	EventPaymentReceived     EventKind = "loan.payment_received"
	EventFullyRepaid         EventKind = "loan.fully_repaid"
)

// Event is the envelope published to the surrounding application after a
// ledger write commits. Payment is set only for payment events.
type Event struct {
	EventID    string        `json:"event_id"`
	Kind       EventKind     `json:"kind"`
	OccurredAt time.Time     `json:"occurred_at"`
	Loan       *loan.Loan    `json:"loan"`
	Payment    *loan.Payment `json:"payment,omitempty"`
}

// NewEvent stamps an envelope with a fresh event id and the current time.
func NewEvent(kind EventKind, l *loan.Loan, p *loan.Payment) Event {
	return Event{
		EventID:    uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Loan:       l,
		Payment:    p,
	}
}

// Gateway is fire-and-forget: implementations log failures and never return
// an error into the ledger path, which has already committed by the time an
// event is published.
type Gateway interface {
	Publish(ctx context.Context, ev Event)
}
