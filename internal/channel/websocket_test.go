package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/logger"
)

// echoServer upgrades every request and writes each inbound message back.
func echoServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrade(w, r, DefaultSettings(), logger.NewNoOpLogger())
		if err != nil {
			return
		}
		defer ws.Close()
		for msg := range ws.Messages() {
			if err := ws.Send(context.Background(), msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocket_SendAndReceive(t *testing.T) {
	_, url := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := Dial(ctx, url, DefaultSettings(), logger.NewNoOpLogger())
	require.NoError(t, err)
	defer ws.Close()

	for _, msg := range []string{`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`} {
		require.NoError(t, ws.Send(ctx, []byte(msg)))
	}

	for _, want := range []string{`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`} {
		select {
		case got := <-ws.Messages():
			assert.Equal(t, want, string(got))
		case <-ctx.Done():
			t.Fatal("timed out waiting for echo")
		}
	}
}

func TestWebSocket_CloseEndsMessages(t *testing.T) {
	_, url := echoServer(t)

	ws, err := Dial(context.Background(), url, DefaultSettings(), logger.NewNoOpLogger())
	require.NoError(t, err)

	require.NoError(t, ws.Close())
	assert.NoError(t, ws.Close())

	select {
	case _, ok := <-ws.Messages():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("messages not closed")
	}
	<-ws.Done()

	err = ws.Send(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConnectionClosed))
}

func TestWebSocket_PeerCloseEndsMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrade(w, r, DefaultSettings(), logger.NewNoOpLogger())
		if err != nil {
			return
		}
		ws.Close()
	}))
	defer srv.Close()

	ws, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), DefaultSettings(), logger.NewNoOpLogger())
	require.NoError(t, err)
	defer ws.Close()

	select {
	case <-ws.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("connection not torn down after peer close")
	}
}

func TestDial_ConnectionFailed(t *testing.T) {
	settings := DefaultSettings()
	settings.HandshakeTimeout = time.Second

	_, err := Dial(context.Background(), "ws://127.0.0.1:1/", settings, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed))
}
