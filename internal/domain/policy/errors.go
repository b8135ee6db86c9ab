package policy

import "errors"

var (
	ErrPolicyNotFound         = errors.New("policy not found")
	ErrPolicyInactive         = errors.New("policy is not active")
	ErrAcknowledgmentNotFound = errors.New("policy acknowledgment not found")
)
