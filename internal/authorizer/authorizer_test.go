package authorizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, zap.NewNop())
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		approved bool
	}{
		{"authorized token", http.StatusOK, "Authorized", true},
		{"approved token in json", http.StatusOK, `{"status":"APPROVED"}`, true},
		{"case insensitive", http.StatusOK, "transaction aUtHoRiZeD", true},
		{"denied body", http.StatusOK, "denied", false},
		{"empty body", http.StatusOK, "", false},
		{"non-2xx with approval body", http.StatusInternalServerError, "authorized", false},
		{"forbidden", http.StatusForbidden, "denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			assert.Equal(t, tt.approved, client.Authorize(context.Background()))
		})
	}
}

func TestAuthorizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("authorized"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 50*time.Millisecond, zap.NewNop())
	assert.False(t, client.Authorize(context.Background()))
}

func TestAuthorizeUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop())
	assert.False(t, client.Authorize(context.Background()))
}

func TestAuthorizeCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("authorized"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, client.Authorize(ctx))
}

func TestNewClientDefaultTimeout(t *testing.T) {
	client := NewClient("http://localhost", 0, zap.NewNop())
	assert.Equal(t, DefaultTimeout, client.http.Timeout)
}
