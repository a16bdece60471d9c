// Package correlation matches replies arriving on an unordered channel back
// to the requests that caused them.
package correlation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/common/metrics"
)

// DefaultTimeout applies when Register is given a non-positive timeout.
const DefaultTimeout = 15 * time.Second

// Reply is the raw reply envelope that settled a request.
type Reply []byte

type Options struct {
	Logger logger.Logger
	// NewToken overrides token generation. Defaults to random UUIDs.
	NewToken func() string
}

// Registry owns every in-flight request of one connection. Register, Resolve
// and expiry are serialized by a single mutex, so each pending request settles
// exactly once no matter which of them gets there first.
type Registry struct {
	mu       sync.Mutex
	pending  map[string]*Pending
	closed   bool
	newToken func() string
	log      logger.Logger
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		pending:  make(map[string]*Pending),
		newToken: opts.NewToken,
		log:      opts.Logger,
	}
	if r.newToken == nil {
		r.newToken = uuid.NewString
	}
	if r.log == nil {
		r.log = logger.NewNoOpLogger()
	}
	return r
}

// Register allocates a token unique among pending tokens and starts its
// timeout clock. After Close the returned Pending has already failed.
func (r *Registry) Register(timeout time.Duration) (string, *Pending) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	token := r.newToken()
	for {
		if _, taken := r.pending[token]; !taken {
			break
		}
		r.log.Warn("correlation token collision, regenerating", map[string]interface{}{"token": token})
		token = r.newToken()
	}

	now := time.Now()
	p := &Pending{
		token:     token,
		createdAt: now,
		timeoutAt: now.Add(timeout),
		timeout:   timeout,
		done:      make(chan struct{}),
	}

	if r.closed {
		p.state = StateExpired
		p.err = apperrors.NewTeardownError("connection closed").WithMetadata("token", token)
		close(p.done)
		return token, p
	}

	r.pending[token] = p
	p.timer = time.AfterFunc(timeout, func() { r.expire(p) })

	metrics.RequestsRegistered.Inc()
	metrics.RequestsInFlight.Inc()
	return token, p
}

// Resolve settles the request registered under token with reply. It reports
// false, and does nothing else, when token is not pending.
func (r *Registry) Resolve(token string, reply Reply) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[token]
	if !ok {
		metrics.UnknownReplies.Inc()
		r.log.Debug("dropping reply for unknown token", map[string]interface{}{"token": token})
		return false
	}
	r.settle(p, StateResolved, reply, nil)
	metrics.RequestsSettled.WithLabelValues(metrics.OutcomeResolved).Inc()
	return true
}

// expire runs on p's timer goroutine.
func (r *Registry) expire(p *Pending) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.state != StateUnresolved {
		return
	}
	r.log.Debug("request expired", map[string]interface{}{"token": p.token, "timeout": p.timeout.String()})
	metrics.RequestsSettled.WithLabelValues(metrics.OutcomeExpired).Inc()
	r.settle(p, StateExpired, nil,
		apperrors.NewTimeoutError("request "+p.token, p.timeout).WithMetadata("token", p.token))
}

// settle must be called with r.mu held and p unresolved.
func (r *Registry) settle(p *Pending, state State, reply Reply, err error) {
	p.state = state
	p.reply = reply
	p.err = err
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(r.pending, p.token)
	close(p.done)
	metrics.RequestsInFlight.Dec()
}

// Close tears the registry down with its connection: every pending request
// fails with a timeout error. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	n := len(r.pending)
	for _, p := range r.pending {
		r.settle(p, StateExpired, nil,
			apperrors.NewTeardownError("connection closed").WithMetadata("token", p.token))
		metrics.RequestsSettled.WithLabelValues(metrics.OutcomeDiscarded).Inc()
	}
	if n > 0 {
		r.log.Info("discarded pending requests at teardown", map[string]interface{}{"count": n})
	}
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Len is the number of requests still awaiting a reply.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
