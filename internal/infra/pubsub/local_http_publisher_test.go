package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/config"
	"coursecraft/internal/domain/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalHTTPPublisher_PublishStoreEvent(t *testing.T) {
	var got PushMessage
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	event := &service.StoreEvent{
		RequestID:  "req-1",
		EventID:    "evt-1",
		Type:       service.EventReviewAdded,
		CreatorID:  "creator-01",
		ProductID:  "1",
		OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	err := NewLocalHTTPPublisher(srv.URL, discardLogger()).PublishStoreEvent(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, localSubscription, got.Subscription)
	assert.Equal(t, "evt-1", got.Message.MessageID)
	assert.Equal(t, "review.added", got.Message.Attributes["event_type"])
	assert.Equal(t, "req-1", got.Message.Attributes["request_id"])

	raw, err := base64.StdEncoding.DecodeString(got.Message.Data)
	require.NoError(t, err)
	var decoded service.StoreEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *event, decoded)
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewLocalHTTPPublisher(srv.URL, discardLogger()).
		PublishStoreEvent(context.Background(), &service.StoreEvent{EventID: "e"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOpenTransport(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.PubSubConfig
		wantErr string
		discard bool
	}{
		{name: "not configured", cfg: nil, discard: true},
		{name: "empty provider", cfg: &config.PubSubConfig{}, discard: true},
		{name: "local", cfg: &config.PubSubConfig{Provider: "local", LocalEndpoint: "http://localhost:8081/push"}},
		{name: "local without endpoint", cfg: &config.PubSubConfig{Provider: "local"}, wantErr: "pubsub.localEndpoint"},
		{name: "google without topic", cfg: &config.PubSubConfig{Provider: "google", ProjectID: "p"}, wantErr: "pubsub.topicId"},
		{name: "unknown", cfg: &config.PubSubConfig{Provider: "kafka"}, wantErr: `unknown pubsub provider "kafka"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := openTransport(context.Background(), tt.cfg, discardLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)

			_, isDiscard := p.(*discardPublisher)
			assert.Equal(t, tt.discard, isDiscard)
			if isDiscard {
				assert.NoError(t, p.PublishStoreEvent(context.Background(), &service.StoreEvent{EventID: "e"}))
			}
			assert.NoError(t, p.Close())
		})
	}
}
