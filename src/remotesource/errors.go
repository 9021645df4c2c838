package remotesource

import "errors"

var ErrRemoteSource = errors.New("remote source")
