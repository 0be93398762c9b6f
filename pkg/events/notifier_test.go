package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_DeliversEvent(t *testing.T) {
	received := make(chan *http.Request, 1)
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		received <- r
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.Publish(context.Background(), CollectionPaymentMethods, ActionAdded, "user-1", "pm-1")

	select {
	case req := <-received:
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		corr := req.Header.Get("X-Correlation-ID")
		_, err := uuid.Parse(corr)
		assert.NoError(t, err, "correlation id must be a UUID")
		assert.Equal(t, corr, got.CorrelationID, "header and body carry the same correlation id")

		assert.Equal(t, "user-1", got.AccountID)
		assert.Equal(t, CollectionPaymentMethods, got.Collection)
		assert.Equal(t, ActionAdded, got.Action)
		assert.Equal(t, "pm-1", got.EntryID)
		assert.WithinDuration(t, time.Now().UTC(), got.OccurredAt, time.Minute)
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the event")
	}
}

func TestWebhookNotifier_OmitsEmptyEntryID(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		bodies <- m
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.Publish(context.Background(), CollectionProfile, ActionRemoved, "user-1", "")

	select {
	case m := <-bodies:
		_, present := m["entry_id"]
		assert.False(t, present, "aggregate-level events carry no entry_id")
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the event")
	}
}

func TestWebhookNotifier_PublishNeverBlocksOnSlowSink(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	n := NewWebhookNotifier(srv.URL)

	done := make(chan struct{})
	go func() {
		n.Publish(context.Background(), CollectionAddresses, ActionUpdated, "user-1", "addr-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on the sink")
	}
}

func TestWebhookNotifier_EmptyURLIsNoOp(t *testing.T) {
	n := NewWebhookNotifier("")
	// Must not panic or spawn anything that dials out.
	n.Publish(context.Background(), CollectionWishlist, ActionAdded, "user-1", "item-1")
}
