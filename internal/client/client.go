// Package client exposes the backend's record API as typed calls over one
// multiplexed channel.
package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"sas-panel/internal/channel"
	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/common/metrics"
	"sas-panel/internal/common/observability"
	"sas-panel/internal/common/validation"
	"sas-panel/internal/correlation"
	"sas-panel/internal/models"
)

// ResultCache stores raw fetch results per record kind. Implementations must
// be safe for concurrent use.
type ResultCache interface {
	Get(ctx context.Context, kind models.Kind, key string) ([]byte, bool, error)
	Put(ctx context.Context, kind models.Kind, key string, results []byte) error
	Invalidate(ctx context.Context, kinds ...models.Kind) error
}

type Options struct {
	// Timeout bounds every call. Defaults to correlation.DefaultTimeout.
	Timeout       time.Duration
	Credential    Credential
	Logger        logger.Logger
	Cache         ResultCache
	Observability *observability.Observability
}

// Client issues requests over a Transport and matches replies by token.
// It owns the transport's inbound stream for its lifetime.
type Client struct {
	transport channel.Transport
	registry  *correlation.Registry
	timeout   time.Duration
	log       logger.Logger
	errs      *apperrors.ErrorHandler
	cache     ResultCache
	obs       *observability.Observability

	mu   sync.RWMutex
	cred Credential

	done chan struct{}
}

// New starts the receive loop on t. Close the client to stop it.
func New(t channel.Transport, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = correlation.DefaultTimeout
	}

	c := &Client{
		transport: t,
		registry:  correlation.NewRegistry(correlation.Options{Logger: log}),
		timeout:   timeout,
		log:       log,
		errs:      apperrors.NewErrorHandler(log),
		cache:     opts.Cache,
		obs:       opts.Observability,
		cred:      opts.Credential,
		done:      make(chan struct{}),
	}

	go c.receiveLoop()
	return c
}

func (c *Client) SetCredential(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = cred
}

func (c *Client) Credential() Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cred
}

// Pending is the number of calls awaiting a reply.
func (c *Client) Pending() int {
	return c.registry.Len()
}

// Done is closed once the receive loop has stopped and every outstanding
// call has settled.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the transport. Outstanding calls fail with a timeout error.
func (c *Client) Close() error {
	err := c.transport.Close()
	c.registry.Close()
	return err
}

// receiveLoop routes every inbound message to its pending call. Nothing it
// receives can stop it; only the end of the stream does.
func (c *Client) receiveLoop() {
	defer close(c.done)
	defer c.registry.Close()

	for msg := range c.transport.Messages() {
		token, err := replyToken(msg)
		if err != nil {
			metrics.MalformedMessages.Inc()
			c.log.Warn("dropping malformed message", map[string]interface{}{
				"error": err,
				"size":  len(msg),
			})
			continue
		}
		c.registry.Resolve(token, correlation.Reply(msg))
	}
	c.log.Debug("receive loop stopped", nil)
}

func replyToken(msg []byte) (string, error) {
	if res := envelopeSchema.ValidateBytes(msg); !res.Valid {
		return "", apperrors.NewDecodeFailedError("reply", res.Summary())
	}
	var h replyHeader
	if err := json.Unmarshal(msg, &h); err != nil {
		return "", apperrors.NewDecodeFailedError("reply", err.Error())
	}
	return *h.ID, nil
}

// call sends one request and waits for its reply, checked against schema.
func (c *Client) call(ctx context.Context, action Action, params interface{}, cred Credential, schema *validation.Schema) (reply []byte, err error) {
	ctx, end := c.obs.StartCall(ctx, action.String())
	defer func() {
		if err != nil && ctx.Err() == nil {
			err = c.errs.Handle(action.String(), err)
		}
		end(outcomeOf(err), err)
	}()

	if c.registry.Closed() {
		return nil, apperrors.NewConnectionClosedError()
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}

	token, pending := c.registry.Register(c.timeout)
	msg, err := json.Marshal(Request{
		Action:     action,
		Parameters: rawParams,
		ID:         token,
		Username:   cred.Username,
		Password:   cred.Password,
	})
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}

	// A failed send leaves the entry to expire like any unanswered request.
	if err := c.transport.Send(ctx, msg); err != nil {
		if _, ok := apperrors.AsStandard(err); ok {
			return nil, err
		}
		return nil, apperrors.NewTransportSendFailedError(err)
	}

	raw, err := pending.Wait(ctx)
	if err != nil {
		if stdErr, ok := apperrors.AsStandard(err); ok {
			stdErr.WithMetadata("action", action.String())
		}
		return nil, err
	}

	if res := schema.ValidateBytes(raw); !res.Valid {
		return nil, apperrors.NewDecodeFailedError(action.String(), res.Summary()).
			WithMetadata("token", token)
	}
	return raw, nil
}

func (c *Client) callStatus(ctx context.Context, action Action, params interface{}, cred Credential) (bool, error) {
	raw, err := c.call(ctx, action, params, cred, statusSchema)
	if err != nil {
		return false, err
	}
	var r statusReply
	if err := json.Unmarshal(raw, &r); err != nil {
		return false, apperrors.NewDecodeFailedError(action.String(), err.Error())
	}
	return r.Status != nil && *r.Status == statusSuccess, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if stdErr, ok := apperrors.AsStandard(err); ok {
		return strings.ToLower(string(stdErr.Code))
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "abandoned"
	}
	return "error"
}
