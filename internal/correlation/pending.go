package correlation

import (
	"context"
	"time"
)

// State of a pending request. Unresolved moves to exactly one of the others.
type State int

const (
	StateUnresolved State = iota
	StateResolved
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolved:
		return "resolved"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// Pending is the awaitable outcome of one registered request.
// Its fields are written under the registry lock and published by closing done.
type Pending struct {
	token     string
	createdAt time.Time
	timeoutAt time.Time
	timeout   time.Duration
	timer     *time.Timer
	done      chan struct{}

	state State
	reply Reply
	err   error
}

func (p *Pending) Token() string        { return p.token }
func (p *Pending) CreatedAt() time.Time { return p.createdAt }
func (p *Pending) Deadline() time.Time  { return p.timeoutAt }

// Done is closed once the request has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the request settles or ctx ends. Giving up through ctx
// only stops this caller from waiting; the request still expires on its own.
func (p *Pending) Wait(ctx context.Context) (Reply, error) {
	select {
	case <-p.done:
		return p.reply, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the current state without blocking.
func (p *Pending) State() State {
	select {
	case <-p.done:
		return p.state
	default:
		return StateUnresolved
	}
}
