package service

import "errors"

// Sentinel error kinds returned by the service. The HTTP layer maps them to
// status codes with errors.Is.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrTooManySessions      = errors.New("session limit reached")
	ErrUnknownBucket        = errors.New("unknown tier")
	ErrUnknownGroup         = errors.New("unknown group")
	ErrUnknownTheme         = errors.New("unknown theme")
	ErrInvalidBuckets       = errors.New("invalid tier list")
	ErrHeadToHeadInactive   = errors.New("head-to-head is not active")
	ErrNotEnoughContestants = errors.New("head-to-head needs at least two unranked contestants")
	ErrInvalidSnapshot      = errors.New("invalid ranking snapshot")
	ErrNoStore              = errors.New("persistence is not configured")
)
