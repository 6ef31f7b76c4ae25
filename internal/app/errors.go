package service

import "errors"

// ErrNotConfigured is returned when an operation needs a component the
// Service was built without.
var ErrNotConfigured = errors.New("service component not configured")
