package job

import "context"

type attemptKey struct{}

type attemptInfo struct {
	attempt, max int
}

func withAttempt(ctx context.Context, attempt, maxAttempts int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attemptInfo{attempt: attempt, max: maxAttempts})
}

// Attempt returns the attempt number of the running job and its attempt
// limit. Both are zero outside a job handler.
func Attempt(ctx context.Context) (attempt, maxAttempts int) {
	info, _ := ctx.Value(attemptKey{}).(attemptInfo)
	return info.attempt, info.max
}
