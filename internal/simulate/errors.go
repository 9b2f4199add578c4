package simulate

import "errors"

var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrStatus       = errors.New("unexpected status code")
	ErrConservation = errors.New("contestants not conserved")
	ErrNoReplay     = errors.New("replayed request was not reported as duplicate")
	ErrFailed       = errors.New("simulation had failed sessions")
)
