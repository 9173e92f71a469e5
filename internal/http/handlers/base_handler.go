// README: Base handler utilities (JSON helpers, id checks, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codrive/internal/http/middleware"
	"codrive/internal/infra"
	"codrive/internal/modules/ledger"
	"codrive/internal/modules/location"
	"codrive/internal/modules/pricing"
	"codrive/internal/types"
)

type errorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	DetourMeters *int   `json:"detour_meters,omitempty"`
	LimitMeters  *int   `json:"limit_meters,omitempty"`
}

type addressReq struct {
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
}

func (a addressReq) toAddress() location.Address {
	return location.Address{
		Country:     a.Country,
		PostalCode:  a.PostalCode,
		City:        a.City,
		Street:      a.Street,
		HouseNumber: a.HouseNumber,
	}
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code, msg string) {
	writeJSON(c, status, errorResponse{Error: msg, Code: code})
}

// pathID reads an id route parameter; ids are uuids.
func pathID(c *gin.Context, name string) (types.ID, bool) {
	v := c.Param(name)
	if uuid.Validate(v) != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid "+name)
		return "", false
	}
	return types.ID(v), true
}

func caller(c *gin.Context) types.ID {
	return types.ID(middleware.CallerUID(c))
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{types.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{types.ErrAddressUnresolvable, http.StatusBadRequest, "address_unresolvable"},
	{types.ErrRouteUnavailable, http.StatusBadRequest, "route_unavailable"},
	{types.ErrDetourTooLarge, http.StatusBadRequest, "detour_too_large"},
	{types.ErrPastDeparture, http.StatusBadRequest, "past_departure"},
	{types.ErrPastArrival, http.StatusBadRequest, "past_arrival"},
	{types.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{types.ErrNotFound, http.StatusNotFound, "not_found"},
	{types.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
	{types.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
	{types.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{types.ErrConflict, http.StatusConflict, "conflict"},
	{types.ErrStaleProposal, http.StatusConflict, "stale_proposal"},
	{ledger.ErrInsufficientPoints, http.StatusConflict, "insufficient_points"},
	{infra.ErrLockTimeout, http.StatusServiceUnavailable, "busy"},
}

func writeServiceError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if !errors.Is(err, e.err) {
			continue
		}
		resp := errorResponse{Error: err.Error(), Code: e.code}
		var detour *pricing.DetourError
		if errors.As(err, &detour) {
			resp.DetourMeters = &detour.DetourMeters
			resp.LimitMeters = &detour.LimitMeters
		}
		writeJSON(c, e.status, resp)
		return
	}
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "internal", "internal error")
}
