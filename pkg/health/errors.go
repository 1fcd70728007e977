package health

import "errors"

// ErrBacklog is returned by Backlog when the queue holds too many items.
var ErrBacklog = errors.New("health: queue backlog over limit")
