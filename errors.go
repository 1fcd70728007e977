package dispatch

import "errors"

var (
	ErrUnknownDriver  = errors.New("dispatch: unknown mailer driver")
	ErrUnknownHistory = errors.New("dispatch: unknown history backend")
	ErrUnknownLocale  = errors.New("dispatch: unknown locale")
	ErrRedisRequired  = errors.New("dispatch: redis history requires REDIS_URL")
	ErrDBRequired     = errors.New("dispatch: feature requires DATABASE_CONN_URL")
	ErrSetup          = errors.New("dispatch: setup failed")
)
