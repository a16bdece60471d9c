package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sas-panel/internal/common/logger"
)

func TestNilObservability(t *testing.T) {
	var o *Observability
	ctx, end := o.StartCall(context.Background(), "template get")
	assert.NotNil(t, ctx)
	end("resolved", nil)
	o.Shutdown()
}

func TestStartCall_WithTracing(t *testing.T) {
	o := New(Options{
		ServiceName: "sas-test",
		Tracing:     true,
		SampleRatio: 1,
		Logger:      logger.NewTestLogger(t),
	})
	defer o.Shutdown()

	ctx, end := o.StartCall(context.Background(), "rule add")
	assert.NotNil(t, ctx)
	end("expired", errors.New("no reply"))
}
