package client

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"sas-panel/internal/models"
)

// ==========================
// Fake Transport
// ==========================

type fakeTransport struct {
	SendFunc func(ctx context.Context, msg []byte) error

	mu       sync.Mutex
	sent     []Request
	messages chan []byte
	done     chan struct{}
	once     sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		messages: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

func (f *fakeTransport) Send(ctx context.Context, msg []byte) error {
	var req Request
	if err := json.Unmarshal(msg, &req); err == nil {
		f.mu.Lock()
		f.sent = append(f.sent, req)
		f.mu.Unlock()
	}
	if f.SendFunc != nil {
		return f.SendFunc(ctx, msg)
	}
	return nil
}

func (f *fakeTransport) Messages() <-chan []byte { return f.messages }
func (f *fakeTransport) Done() <-chan struct{}   { return f.done }

func (f *fakeTransport) Close() error {
	f.once.Do(func() {
		close(f.done)
		close(f.messages)
	})
	return nil
}

func (f *fakeTransport) deliver(msg string) {
	f.messages <- []byte(msg)
}

func (f *fakeTransport) requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.sent...)
}

// replyWith answers every request with fn's payload plus the request token.
func (f *fakeTransport) replyWith(t *testing.T, fn func(req Request) map[string]interface{}) {
	f.SendFunc = func(_ context.Context, msg []byte) error {
		var req Request
		require.NoError(t, json.Unmarshal(msg, &req))
		payload := fn(req)
		if payload == nil {
			return nil
		}
		payload["id"] = req.ID
		out, err := json.Marshal(payload)
		require.NoError(t, err)
		go func() { f.messages <- out }()
		return nil
	}
}

// ==========================
// Fake Cache
// ==========================

type fakeCache struct {
	GetFunc        func(ctx context.Context, kind models.Kind, key string) ([]byte, bool, error)
	PutFunc        func(ctx context.Context, kind models.Kind, key string, results []byte) error
	InvalidateFunc func(ctx context.Context, kinds ...models.Kind) error
}

func (f *fakeCache) Get(ctx context.Context, kind models.Kind, key string) ([]byte, bool, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, kind, key)
	}
	return nil, false, nil
}

func (f *fakeCache) Put(ctx context.Context, kind models.Kind, key string, results []byte) error {
	if f.PutFunc != nil {
		return f.PutFunc(ctx, kind, key, results)
	}
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, kinds ...models.Kind) error {
	if f.InvalidateFunc != nil {
		return f.InvalidateFunc(ctx, kinds...)
	}
	return nil
}
