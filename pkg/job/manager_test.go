package job

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_NilPool(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)

	_, err = NewEnqueuer(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	assert.Equal(t, defaultMaxWorkers, cfg.maxWorkers)

	for _, opt := range (Config{MaxWorkers: 3, MaxAttempts: 5}).Options() {
		opt(cfg)
	}
	WithQueue("notifications", 4)(cfg)
	WithQueue("", 4)(cfg)
	WithQueue("ignored", 0)(cfg)
	WithMaxWorkers(-1)(cfg)

	assert.Equal(t, 3, cfg.maxWorkers)
	assert.Equal(t, 5, cfg.maxAttempts)
	assert.Equal(t, map[string]int{"notifications": 4}, cfg.queues)
}

func TestBuildJobArgs(t *testing.T) {
	t.Parallel()

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("digest", nil)
		require.NoError(t, err)
		assert.Equal(t, "digest", args.TaskName)
		assert.Empty(t, args.Payload)
		assert.NotNil(t, opts)
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()

		_, _, err := buildJobArgs("deliver", make(chan int))
		assert.Error(t, err)
	})

	t.Run("combined options", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
		payload := testPayload{Message: "stock", Count: 1}
		args, opts, err := buildJobArgs("deliver", payload,
			InQueue("notifications"),
			ScheduledAt(at),
			MaxAttempts(3),
			Priority(1),
			Tags("alert", "stock"),
			UniqueFor(time.Minute),
			UniqueKey("stock:A4-80"),
		)
		require.NoError(t, err)

		assert.Equal(t, "deliver", args.TaskName)
		assert.Equal(t, "stock:A4-80", args.UniqueKey)
		assert.Equal(t, "notifications", opts.Queue)
		assert.Equal(t, at, opts.ScheduledAt)
		assert.Equal(t, 3, opts.MaxAttempts)
		assert.Equal(t, 1, opts.Priority)
		assert.Equal(t, []string{"alert", "stock"}, opts.Tags)
		assert.True(t, opts.UniqueOpts.ByArgs)
		assert.Equal(t, time.Minute, opts.UniqueOpts.ByPeriod)

		var decoded testPayload
		require.NoError(t, json.Unmarshal(args.Payload, &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("unique key ignored without window", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("deliver", nil, UniqueKey("k"))
		require.NoError(t, err)
		assert.Empty(t, args.UniqueKey)
		assert.Equal(t, river.UniqueOpts{}, opts.UniqueOpts)
	})

	t.Run("out of range values are ignored", func(t *testing.T) {
		t.Parallel()

		_, opts, err := buildJobArgs("deliver", nil, Priority(9), MaxAttempts(0))
		require.NoError(t, err)
		assert.Zero(t, opts.Priority)
		assert.Zero(t, opts.MaxAttempts)
	})
}

func TestTaskArgs_Kind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "dispatch:task", taskArgs{}.Kind())
}

func TestParseCronSchedule(t *testing.T) {
	t.Parallel()

	valid := []string{"* * * * *", "0 * * * *", "0 8 * * *", "*/15 * * * *", "0 0 * * 0"}
	for _, expr := range valid {
		s, err := parseCronSchedule(expr)
		require.NoError(t, err, expr)
		now := time.Now()
		assert.True(t, s.Next(now).After(now), expr)
	}

	invalid := []string{"", "* * *", "* * * * * *", "60 * * * *", "* 25 * * *", "nonsense"}
	for _, expr := range invalid {
		_, err := parseCronSchedule(expr)
		assert.Error(t, err, expr)
	}
}

func TestCronSchedule_DailyDigest(t *testing.T) {
	t.Parallel()

	s, err := parseCronSchedule("0 8 * * *")
	require.NoError(t, err)

	base := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 8, 8, 0, 0, 0, time.UTC), s.Next(base))
	assert.Equal(t, time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC),
		s.Next(time.Date(2025, 3, 7, 7, 59, 0, 0, time.UTC)))
}
