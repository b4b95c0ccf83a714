package domain

import "github.com/juju/errors"

// ErrUpstream marks failures of geocoding, distance or checkout providers.
const ErrUpstream = errors.ConstError("upstream failure")
