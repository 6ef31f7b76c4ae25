package model

import "errors"

// ErrInvalidTask is returned when a task description cannot be scored.
var ErrInvalidTask = errors.New("invalid task")
