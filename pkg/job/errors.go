package job

import "errors"

var (
	// ErrUnknownTask is returned when a job names a task that is not registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload does not decode into the task's type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")

	// ErrPermanent marks a task failure that must not be retried.
	ErrPermanent = errors.New("job: permanent failure")

	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
	ErrLagging           = errors.New("job: workers are falling behind")
	ErrMigrate           = errors.New("job: failed to migrate river schema")
)

// Permanent wraps err so the manager cancels the job instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrPermanent, err)
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool { return errors.Is(err, ErrPermanent) }
