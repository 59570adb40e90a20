package session

import "errors"

var (
	ErrNotRunning     = errors.New("session not running")
	ErrAlreadyRunning = errors.New("session already running")
)
