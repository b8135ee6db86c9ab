package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTarget        = errors.New("invalid notification target")
)
