package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"agripledge-backend/internal/domain/notify"
)

// RedisGateway publishes loan events as JSON on a Redis channel for the
// surrounding application (USSD menus, dashboards, SMS senders) to consume.
// Best-effort: publish failures are logged and never reach the caller, and
// the ledger write has already committed by the time Publish runs.
type RedisGateway struct {
	rdb     *redis.Client
	channel string
}

func NewRedisGateway(rdb *redis.Client, channel string) *RedisGateway {
	return &RedisGateway{rdb: rdb, channel: channel}
}

func (g *RedisGateway) Publish(ctx context.Context, ev notify.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal %s event %s: %v", ev.Kind, ev.EventID, err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := g.rdb.Publish(pubCtx, g.channel, payload).Err(); err != nil {
		log.Printf("notify: publish %s event %s: %v", ev.Kind, ev.EventID, err)
	}
}

// LogGateway is the no-redis fallback used in development and tests.
type LogGateway struct{}

func (LogGateway) Publish(_ context.Context, ev notify.Event) {
	loanID := ""
	if ev.Loan != nil {
		loanID = ev.Loan.LoanID
	}
	log.Printf("notify: %s loan=%s event=%s", ev.Kind, loanID, ev.EventID)
}
