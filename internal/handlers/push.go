// Package handlers holds the HTTP transport for the push subscription
// endpoint. The envelope is the Pub/Sub push format: a JSON object with
// a message whose data field is the base64-encoded change notification.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marketbridge/marketbridge/internal/eventsync"
	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/metrics"
	"github.com/marketbridge/marketbridge/internal/model"
	"github.com/marketbridge/marketbridge/internal/ratelimit"
)

// MessageProcessor runs one decoded notification end to end and folds
// the outcome into a single status.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg *model.Message) eventsync.Result
}

type PushHandler struct {
	processor MessageProcessor
	limiter   ratelimit.RateLimiter
	validate  *validator.Validate
	log       *logging.Logger
}

func NewPushHandler(processor MessageProcessor, limiter ratelimit.RateLimiter, log *logging.Logger) *PushHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	if log == nil {
		log = logging.Default()
	}
	return &PushHandler{
		processor: processor,
		limiter:   limiter,
		validate:  validator.New(),
		log:       log,
	}
}

// HandlePush accepts one push envelope. The subscription retries on any
// non-2xx response, so the status code is the whole contract: 204 when
// everything succeeded, 202 when part of the work failed and a retry
// would duplicate the successful part, 5xx when nothing succeeded and a
// retry is wanted. Failure causes stay in the logs, never in the body.
func (h *PushHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()

	allowed, err := h.limiter.Allow(ctx, getClientIP(r))
	if err != nil {
		// Fail open: a limiter outage must not stall the subscription.
		h.log.WarnContext(ctx, "rate limit check failed", logging.Error(err))
	} else if !allowed {
		h.sendError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		h.sendError(w, http.StatusBadRequest, "no push message received")
		return
	}

	var envelope model.PushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid push message format")
		return
	}
	if err := h.validate.Struct(&envelope); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid push message format")
		return
	}

	var msg model.Message
	if err := json.Unmarshal(envelope.Message.Data, &msg); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid notification payload")
		return
	}

	result, crashed := h.process(ctx, &msg)
	if crashed {
		metrics.MessagesTotal.WithLabelValues(msg.Resource.TypeID, "crash").Inc()
		h.sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.MessagesTotal.WithLabelValues(msg.Resource.TypeID, string(result.Status)).Inc()

	switch result.Status {
	case eventsync.StatusOK:
		w.WriteHeader(http.StatusNoContent)
	case eventsync.StatusPartial:
		// Acknowledge so the subscription does not redeliver: the
		// fulfilled deliveries already went out.
		w.WriteHeader(http.StatusAccepted)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// process shields the transport from a panicking dispatch.
func (h *PushHandler) process(ctx context.Context, msg *model.Message) (result eventsync.Result, crashed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			crashed = true
			h.log.ErrorContext(ctx, "panic while processing notification",
				logging.MessageID(msg.ID),
				logging.ResourceType(msg.Resource.TypeID),
				"panic", rec,
			)
		}
	}()
	result = h.processor.ProcessMessage(ctx, msg)
	return result, false
}

func (h *PushHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (h *PushHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

func (h *PushHandler) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
