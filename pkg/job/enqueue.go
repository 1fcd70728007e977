package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

type enqueueConfig struct {
	scheduledAt time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures a single insert.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) { c.queue = name }
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = t }
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = time.Now().Add(d) }
}

// MaxAttempts overrides the attempt limit for this job.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Priority sets River priority, 1 (first) to 4 (last).
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		if p >= 1 && p <= 4 {
			c.priority = p
		}
	}
}

// Tags attaches metadata tags to the job.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) { c.tags = append(c.tags, tags...) }
}

// UniqueFor skips the insert when a job with the same task name and
// UniqueKey was inserted within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueFor = d }
}

// UniqueKey sets the deduplication key used with UniqueFor.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueKey = key }
}

// taskArgs is the single River job type; the registry dispatches on TaskName.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "dispatch:task" }

func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
		args.Payload = raw
	}

	c := &enqueueConfig{}
	for _, opt := range opts {
		opt(c)
	}

	io := &river.InsertOpts{
		Queue:       c.queue,
		ScheduledAt: c.scheduledAt,
		MaxAttempts: c.maxAttempts,
		Priority:    c.priority,
		Tags:        c.tags,
	}
	if c.uniqueFor > 0 {
		io.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: c.uniqueFor}
		args.UniqueKey = c.uniqueKey
	}

	return args, io, nil
}
