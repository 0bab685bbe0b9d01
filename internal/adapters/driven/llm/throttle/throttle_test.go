package throttle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

type countingLLM struct {
	calls atomic.Int32
}

func (c *countingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	c.calls.Add(1)
	return "gen", nil
}

func (c *countingLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	c.calls.Add(1)
	return "chat", nil
}

func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { return nil }

func TestWrap_ZeroRateIsPassthrough(t *testing.T) {
	inner := &countingLLM{}
	assert.Same(t, inner, Wrap(inner, 0))
	assert.Nil(t, Wrap(nil, 10))
}

func TestWrap_Delegates(t *testing.T) {
	inner := &countingLLM{}
	svc := Wrap(inner, 6000)

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gen", out)

	out, err = svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chat", out)

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, "counting", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestWrap_HonoursContextWhileWaiting(t *testing.T) {
	inner := &countingLLM{}
	svc := Wrap(inner, 1)

	_, err := svc.Generate(context.Background(), "first", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "second", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}
