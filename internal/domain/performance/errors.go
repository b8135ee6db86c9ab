package performance

import "errors"

var (
	ErrMeetingNotFound         = errors.New("performance meeting not found")
	ErrInvalidStatusTransition = errors.New("invalid meeting status transition")
	ErrNotMeetingParticipant   = errors.New("not a participant of this meeting")
)
