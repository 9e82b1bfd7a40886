package assessment

import "errors"

var (
	ErrSessionNotFound = errors.New("assessment session not found")
	ErrReportNotReady  = errors.New("assessment report not ready")
	ErrInvalidAction   = errors.New("invalid assessment action")
	ErrVersionConflict = errors.New("assessment session was modified concurrently")
)
