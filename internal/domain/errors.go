package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionBusy     = errors.New("session busy")
	ErrModelNotFound   = errors.New("model not found")
	ErrUnknownProvider = errors.New("unknown provider")
)
