package platform

import "errors"

var ErrNoPlatforms = errors.New("cannot determine platforms; no koji target or platform list")
