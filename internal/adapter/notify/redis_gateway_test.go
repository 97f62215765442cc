package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainLoan "agripledge-backend/internal/domain/loan"
	domain "agripledge-backend/internal/domain/notify"
)

func TestNewEvent_Envelope(t *testing.T) {
	l := &domainLoan.Loan{LoanID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	ev := domain.NewEvent(domain.EventApproved, l, nil)

	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Fatalf("event id not a uuid: %q", ev.EventID)
	}
	if ev.Kind != domain.EventApproved || ev.Loan != l || ev.Payment != nil {
		t.Fatalf("envelope mismatch: %+v", ev)
	}
	if ev.OccurredAt.Location() != time.UTC {
		t.Fatalf("occurred_at not UTC: %v", ev.OccurredAt.Location())
	}
}

func TestRedisGateway_PublishDeliversJSON(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sub := rdb.Subscribe(context.Background(), "loan.events.test")
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	gw := NewRedisGateway(rdb, "loan.events.test")
	l := &domainLoan.Loan{LoanID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Status: domainLoan.StatusActive}
	gw.Publish(context.Background(), domain.NewEvent(domain.EventApproved, l, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("no event delivered: %v", err)
	}

	var got domain.Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.Kind != domain.EventApproved || got.Loan == nil || got.Loan.LoanID != l.LoanID {
		t.Fatalf("event mismatch: %s", msg.Payload)
	}
}

func TestRedisGateway_PublishSurvivesCancelledContext(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The request context is already gone when the event fires; Publish must
	// still go out rather than inherit the cancellation.
	gw := NewRedisGateway(rdb, "loan.events.test")
	gw.Publish(ctx, domain.NewEvent(domain.EventFullyRepaid, &domainLoan.Loan{LoanID: "bb"}, nil))
}

func TestLogGateway_Publish(t *testing.T) {
	// Fallback gateway only logs; it must tolerate a nil loan.
	LogGateway{}.Publish(context.Background(), domain.Event{Kind: domain.EventRejected})
}
