package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// SSE header constants.
const (
	headerContentType              = "Content-Type"
	headerCacheControl             = "Cache-Control"
	headerConnection               = "Connection"
	headerXAccelBuffering          = "X-Accel-Buffering"
	headerAccessControlAllowOrigin = "Access-Control-Allow-Origin"

	sseContentType = "text/event-stream"
)

// Handler creates a Gin handler that subscribes to the broker and streams
// events until the client disconnects or the broker drops it.
func Handler(broker *Broker, log logger.Logger, opts ...ClientOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventChan, cleanup := broker.Subscribe(c.Request.Context(), opts...)
		defer cleanup()

		if !checkSubscriptionValid(eventChan, c, log) {
			return
		}

		setSSEHeaders(c.Writer)
		if err := sendConnectionEvent(c.Writer); err != nil {
			log.Error("Failed to write connection event", logger.Error(err))
			return
		}

		log.Debug("SSE client connected", logger.String("remote_addr", c.ClientIP()))

		streamEvents(c, eventChan, log)
	}
}

func setSSEHeaders(w gin.ResponseWriter) {
	w.Header().Set(headerContentType, sseContentType)
	w.Header().Set(headerCacheControl, "no-cache")
	w.Header().Set(headerConnection, "keep-alive")
	w.Header().Set(headerXAccelBuffering, "no")
	w.Header().Set(headerAccessControlAllowOrigin, "*")
}

// checkSubscriptionValid reports false when the broker rejected the subscription.
func checkSubscriptionValid(eventChan <-chan Event, c *gin.Context, log logger.Logger) bool {
	select {
	case _, ok := <-eventChan:
		if !ok {
			log.Warn("SSE subscription rejected (max clients reached)")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many connections"})
			return false
		}
	default:
	}
	return true
}

func sendConnectionEvent(w gin.ResponseWriter) error {
	return writeEvent(w, Event{
		Type: eventTypeConnected,
		Data: map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"message":   "SSE connection established",
		},
	})
}

func streamEvents(c *gin.Context, eventChan <-chan Event, log logger.Logger) {
	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				log.Debug("SSE event channel closed")
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				log.Debug("SSE write failed (client likely disconnected)",
					logger.Error(err),
					logger.String("event_type", event.Type),
				)
				return
			}
		case <-c.Request.Context().Done():
			log.Debug("SSE client request context cancelled")
			return
		}
	}
}

// WriteFrame writes one event in SSE wire format. Keep-alives become comments.
func WriteFrame(w io.Writer, event Event) error {
	if event.Type == EventTypeKeepAlive {
		if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
			return fmt.Errorf("write keep-alive: %w", err)
		}
		return nil
	}

	if event.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
			return fmt.Errorf("write event type: %w", err)
		}
	}

	if event.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return fmt.Errorf("write event id: %w", err)
		}
	}

	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", dataJSON); err != nil {
		return fmt.Errorf("write event data: %w", err)
	}

	return nil
}

func writeEvent(w gin.ResponseWriter, event Event) error {
	if err := WriteFrame(w, event); err != nil {
		return err
	}
	w.Flush()
	return nil
}
