package workspace

import "errors"

var ErrAlreadySet = errors.New("workspace entry already set")
