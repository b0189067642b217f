package utils

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTernary(t *testing.T) {
	assert.Equal(t, "yes", Ternary(true, "yes", "no"))
	assert.Equal(t, 2, Ternary(false, 1, 2))
}

func TestUnmarshalAndHandle(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var got []string
	handler := func(p payload) { got = append(got, p.Name) }

	UnmarshalAndHandle(zap.NewNop(), json.RawMessage(`{"name":"ok"}`), handler)
	UnmarshalAndHandle(zap.NewNop(), json.RawMessage(`not json`), handler)

	assert.Equal(t, []string{"ok"}, got)
}

func TestRunAsync(t *testing.T) {
	t.Run("ejecuta con deadline propio", func(t *testing.T) {
		var hadDeadline bool
		done := RunAsync(zap.NewNop(), "ok", time.Second, func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("la tarea no terminó")
		}
		assert.True(t, hadDeadline)
	})

	t.Run("los errores no se propagan", func(t *testing.T) {
		done := RunAsync(zap.NewNop(), "fail", time.Second, func(ctx context.Context) error {
			return errors.New("boom")
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("la tarea no terminó")
		}
	})
}
