package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testReqID    = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testCallerID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// newGuardedEcho wires the middleware in front of a single route pair so
// tests can hit both the mutating and the bypassed method.
func newGuardedEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, ttl))
	e.POST("/loans/:loan_id/payments", handler)
	e.GET("/loans/:loan_id/payments", handler)
	return e
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func validHeaders() map[string]string {
	return map[string]string{
		"Ax-Request-Id": testReqID,
		"Ax-Request-At": time.Now().UTC().Format(time.RFC3339),
		"Ax-Caller-Id":  testCallerID,
	}
}

func recordedPayment(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"outstanding_balance": 4497.53})
}

func TestIdempotency_BypassesGET(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := newGuardedEcho(rdb, 30*time.Second, recordedPayment)

	// No Ax-* headers at all; the read path must not require them.
	rec := doReq(t, e, http.MethodGet, "/loans/x/payments", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET bypass: want 200, got %d", rec.Code)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := newGuardedEcho(rdb, 30*time.Second, recordedPayment)

	cases := []struct {
		name   string
		mutate func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"malformed request id", func(h map[string]string) { h["Ax-Request-Id"] = "NOT-HEX" }},
		{"missing request at", func(h map[string]string) { delete(h, "Ax-Request-At") }},
		{"garbage request at", func(h map[string]string) { h["Ax-Request-At"] = "yesterday" }},
		{"naive request at", func(h map[string]string) { h["Ax-Request-At"] = "2026-01-05T10:00:00" }},
		{"stale request at", func(h map[string]string) {
			h["Ax-Request-At"] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"future request at", func(h map[string]string) {
			h["Ax-Request-At"] = time.Now().UTC().Add(maxClockSkew + time.Minute).Format(time.RFC3339)
		}},
		{"missing caller id", func(h map[string]string) { delete(h, "Ax-Caller-Id") }},
		{"short caller id", func(h map[string]string) { h["Ax-Caller-Id"] = "abc123" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := validHeaders()
			tc.mutate(h)
			rec := doReq(t, e, http.MethodPost, "/loans/x/payments",
				bytes.NewReader([]byte(`{"amount":100}`)), h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestIdempotency_FirstCallThenReplay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := newGuardedEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]any{"outstanding_balance": 0.0, "call": calls})
	})

	h := validHeaders()
	body := []byte(`{"amount":6297.53,"reference":"mm-001"}`)

	rec1 := doReq(t, e, http.MethodPost, "/loans/x/payments", bytes.NewReader(body), h)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first call: want 200, got %d body=%s", rec1.Code, rec1.Body.String())
	}

	// Same headers and body: the stored response comes back and the handler
	// does not run a second time.
	rec2 := doReq(t, e, http.MethodPost, "/loans/x/payments", bytes.NewReader(body), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay: want 200, got %d", rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := newGuardedEcho(rdb, 2*time.Minute, recordedPayment)

	body := []byte(`{"amount":1800}`)
	key := buildKey(http.MethodPost, "/loans/:loan_id/payments", testCallerID, testReqID)
	seed := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, seed); err != nil || !ok {
		t.Fatalf("seed provisional: ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans/x/payments", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in progress: want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestIdempotency_ReusedIDDifferentBodyConflicts(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := newGuardedEcho(rdb, 2*time.Minute, recordedPayment)

	key := buildKey(http.MethodPost, "/loans/:loan_id/payments", testCallerID, testReqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusOK,
		Body:        []byte(`{"outstanding_balance":4497.53}`),
		BodySHA256:  bodyHash([]byte(`{"amount":1800}`)),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans/x/payments",
		bytes.NewReader([]byte(`{"amount":9999}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("reused id, new body: want 409, got %d", rec.Code)
	}
}

func TestIdempotency_StoreDown(t *testing.T) {
	// Nothing listens on port 1, so SetNX fails fast.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := newGuardedEcho(rdb, time.Minute, recordedPayment)

	rec := doReq(t, e, http.MethodPost, "/loans/x/payments",
		bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store down: want 503, got %d", rec.Code)
	}
}
