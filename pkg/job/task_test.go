package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type testTask struct {
	name   string
	got    testPayload
	called bool
	err    error
}

func (t *testTask) Name() string { return t.name }

func (t *testTask) Handle(_ context.Context, p testPayload) error {
	t.called = true
	t.got = p
	return t.err
}

type tickTask struct{ runs int }

func (t *tickTask) Name() string     { return "tick" }
func (t *tickTask) Schedule() string { return "0 8 * * *" }
func (t *tickTask) Handle(context.Context) error {
	t.runs++
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	task := &testTask{name: "deliver"}
	r.register(task.Name(), typedTask[testPayload, *testTask]{task: task})

	_, ok := r.get("deliver")
	assert.True(t, ok)

	_, ok = r.get("missing")
	assert.False(t, ok)
}

func TestRegistry_NamesSorted(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	WithTask[testPayload](&testTask{name: "zeta"})(cfg)
	WithTask[testPayload](&testTask{name: "alpha"})(cfg)
	cfg.registry.register("mid", scheduledTask(func(context.Context) error { return nil }))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, cfg.registry.names())
}

func TestTypedTask_Execute(t *testing.T) {
	t.Parallel()

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()

		task := &testTask{name: "deliver"}
		exec := typedTask[testPayload, *testTask]{task: task}

		err := exec.Execute(context.Background(), json.RawMessage(`{"message":"hi","count":3}`))
		require.NoError(t, err)
		assert.True(t, task.called)
		assert.Equal(t, testPayload{Message: "hi", Count: 3}, task.got)
	})

	t.Run("empty and null payloads give the zero value", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
			task := &testTask{name: "deliver"}
			exec := typedTask[testPayload, *testTask]{task: task}

			require.NoError(t, exec.Execute(context.Background(), raw))
			assert.True(t, task.called)
			assert.Equal(t, testPayload{}, task.got)
		}
	})

	t.Run("invalid payload is permanent", func(t *testing.T) {
		t.Parallel()

		task := &testTask{name: "deliver"}
		exec := typedTask[testPayload, *testTask]{task: task}

		err := exec.Execute(context.Background(), json.RawMessage(`{"count":"three"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.True(t, IsPermanent(err))
		assert.False(t, task.called)
	})

	t.Run("handler error is returned", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		task := &testTask{name: "deliver", err: boom}
		exec := typedTask[testPayload, *testTask]{task: task}

		err := exec.Execute(context.Background(), json.RawMessage(`{}`))
		assert.ErrorIs(t, err, boom)
		assert.False(t, IsPermanent(err))
	})
}

func TestWithScheduledTask(t *testing.T) {
	t.Parallel()

	task := &tickTask{}
	cfg := newConfig()
	WithScheduledTask(task)(cfg)

	require.Len(t, cfg.schedules, 1)
	s := cfg.schedules[0]
	assert.Equal(t, "tick", s.name)
	assert.Equal(t, "0 8 * * *", s.cron)

	require.NoError(t, s.run.Execute(context.Background(), json.RawMessage(`{"ignored":true}`)))
	assert.Equal(t, 1, task.runs)
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Permanent(nil))

	base := errors.New("rejected")
	err := Permanent(base)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestAttemptFromContext(t *testing.T) {
	t.Parallel()

	attempt, limit := Attempt(context.Background())
	assert.Zero(t, attempt)
	assert.Zero(t, limit)

	attempt, limit = Attempt(withAttempt(context.Background(), 2, 8))
	assert.Equal(t, 2, attempt)
	assert.Equal(t, 8, limit)
}
