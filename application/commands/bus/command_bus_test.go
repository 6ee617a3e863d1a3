package bus

import (
	"context"
	"errors"
	"testing"

	"moodi-backend/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBus_Send(t *testing.T) {
	// Arrange
	metrics := observability.NewCollector("test")
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()), MetricsMiddleware(metrics))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return "pong " + cmd.(pingCommand).Name, nil
	})))

	// Act
	result, err := b.Send(context.Background(), pingCommand{Name: "ana"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong ana", result)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dispatches.WithLabelValues("command", "pingCommand", "success")))
}

func TestCommandBus_ValidationStopsDispatch(t *testing.T) {
	b := NewCommandBus()
	called := false
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		called = true
		return nil, nil
	})))

	_, err := b.Send(context.Background(), pingCommand{})

	assert.EqualError(t, err, "name is required")
	assert.False(t, called)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	b := NewCommandBus()

	_, err := b.Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(context.Context, Command) (interface{}, error) { return nil, nil })

	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestPipeline_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	h := NewPipeline(mw("outer"), mw("inner")).Execute(CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	}))
	_, _ = h.Handle(context.Background(), otherCommand{})

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
