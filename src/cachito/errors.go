package cachito

import "errors"

var (
	ErrRequestFailed = errors.New("cachito request did not complete")
	ErrTimeout       = errors.New("timed out waiting for cachito request")
)
