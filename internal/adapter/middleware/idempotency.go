package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// Held while the first delivery is still executing; refreshed to the
	// configured TTL once the handler finishes.
	provisionalLockTTL = 60 * time.Second
	// Tolerated client/server clock drift on Ax-Request-At.
	maxClockSkew = 10 * time.Minute
)

// idempEntry is the record stored per idempotency key. While a first
// delivery is running only the hash fields are set; once the handler
// finishes the response code and body are filled in for replay.
type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// respRecorder tees the handler's response into a buffer so it can be
// stored for replay.
type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// axHeaders carries the validated idempotency headers of one request.
type axHeaders struct {
	requestID string
	callerID  string
	requestAt time.Time
}

// readAxHeaders validates the three Ax-* headers and returns an empty
// message on success. Ax-Request-At must be epoch seconds/millis or
// RFC3339 with an explicit zone; naive local timestamps are rejected.
func readAxHeaders(req *http.Request) (axHeaders, string) {
	var h axHeaders

	h.requestID = strings.TrimSpace(req.Header.Get("Ax-Request-Id"))
	if h.requestID == "" {
		return h, "missing Ax-Request-Id"
	}
	if !validReqID(h.requestID) {
		return h, "invalid Ax-Request-Id format"
	}

	reqAt, err := parseAxRequestAt(req.Header.Get("Ax-Request-At"))
	if err != nil {
		return h, err.Error()
	}
	now := nowUTC()
	if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
		return h, "Ax-Request-At too skewed"
	}
	h.requestAt = reqAt

	h.callerID = strings.TrimSpace(req.Header.Get("Ax-Caller-Id"))
	if h.callerID == "" {
		return h, "missing Ax-Caller-Id"
	}
	if !reHex32.MatchString(h.callerID) {
		return h, "invalid Ax-Caller-Id"
	}
	return h, ""
}

// IdempotencyMiddleware guards the mutating loan routes (apply, approve,
// reject, repay, revalue) against at-least-once delivery: an identical
// retry replays the stored response instead of re-running the handler.
// The key is method + route + caller id + request id.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// Reads pass straight through.
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			hdr, msg := readAxHeaders(req)
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}

			// Buffer the body so the handler can still read it, and hash it
			// to detect a request id reused with a different payload.
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), hdr.callerID, hdr.requestID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   hdr.requestID,
				RequestAtMS: hdr.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}
			ok, err := provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				// Key already held. Either a finished delivery we can replay,
				// a body mismatch, or a first delivery still in flight.
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil {
					log.Printf("idempotency: load %s failed: %v", key, errLoad)
				}

				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": "Ax-Request-Id reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			// First delivery: run the handler with the response teed off,
			// then persist the outcome for replay.
			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			final := idempEntry{
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   hdr.requestID,
				RequestAtMS: hdr.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}
			_ = saveFinal(context.Background(), rdb, key, final, ttl)
			return nil
		}
	}
}
