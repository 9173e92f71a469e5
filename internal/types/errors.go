// README: Caller-facing error kinds shared by the route engine and ride aggregate.
package types

import "errors"

var (
	ErrRouteUnavailable    = errors.New("route unavailable")
	ErrAddressUnresolvable = errors.New("address could not be resolved")
	ErrCapacityExceeded    = errors.New("ride capacity exceeded")
	ErrDuplicateRequest    = errors.New("requester already has an open request for this ride")
	ErrDetourTooLarge      = errors.New("detour exceeds ride limit")
	ErrPastDeparture       = errors.New("departure time is in the past")
	ErrPastArrival         = errors.New("arrival time is in the past")
	ErrUnauthorized        = errors.New("caller is not allowed to perform this action")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrConflict            = errors.New("concurrent modification")
	ErrStaleProposal       = errors.New("route proposal is stale")
	ErrBadRequest          = errors.New("bad request")
)
