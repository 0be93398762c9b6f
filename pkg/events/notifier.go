// Package events publishes profile-change notifications to an external
// sink over HTTP. Delivery is best-effort: a failed or slow sink is logged
// and forgotten, and never fails or rolls back the mutation that triggered
// the event.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Actions reported to the sink.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

// Collections reported to the sink.
const (
	CollectionAddresses      = "addresses"
	CollectionPaymentMethods = "payment_methods"
	CollectionWishlist       = "wishlist"
	CollectionProfile        = "profile"
)

// Event is the change summary sent to the sink.
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	AccountID     string    `json:"account_id"`
	Collection    string    `json:"collection"`
	Action        string    `json:"action"`
	EntryID       string    `json:"entry_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher is what the services depend on.
type Publisher interface {
	Publish(ctx context.Context, collection, action, accountID, entryID string)
}

// WebhookNotifier POSTs events to a configured URL. A notifier with an
// empty URL is a no-op, so callers never need a nil check.
type WebhookNotifier struct {
	sinkURL string
	client  *http.Client
}

// NewWebhookNotifier creates a notifier for the given sink URL.
func NewWebhookNotifier(sinkURL string) *WebhookNotifier {
	return &WebhookNotifier{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish sends the event in a background goroutine. Errors are logged,
// never returned: the caller's mutation has already committed.
func (n *WebhookNotifier) Publish(ctx context.Context, collection, action, accountID, entryID string) {
	if n.sinkURL == "" {
		return
	}

	event := Event{
		CorrelationID: uuid.NewString(),
		AccountID:     accountID,
		Collection:    collection,
		Action:        action,
		EntryID:       entryID,
		OccurredAt:    time.Now().UTC(),
	}

	go func() {
		// Detached from the request context so an already-finished request
		// doesn't cancel the notification.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := n.send(ctx, event); err != nil {
			log.Printf("events: failed to notify sink for account %s (%s %s): %v",
				event.AccountID, event.Action, event.Collection, err)
		}
	}()
}

func (n *WebhookNotifier) send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.sinkURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", event.CorrelationID)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("events: sink responded %d for correlation %s", resp.StatusCode, event.CorrelationID)
	}
	return nil
}
