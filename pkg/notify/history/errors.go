package history

import "errors"

var (
	ErrEncode = errors.New("history: failed to encode delivery")
	ErrDecode = errors.New("history: failed to decode delivery")
)
