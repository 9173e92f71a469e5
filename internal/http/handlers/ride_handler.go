// README: Ride handlers for offer, view, complete and delete.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codrive/internal/modules/codrive"
	"codrive/internal/modules/ride"
	"codrive/internal/types"
)

type RideService interface {
	Create(ctx context.Context, cmd ride.CreateCommand) (*ride.Ride, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]ride.Ride, error)
	Complete(ctx context.Context, cmd ride.DriverCommand) (*ride.Ride, error)
	Delete(ctx context.Context, cmd ride.DriverCommand) error
}

type RideViewer interface {
	RideView(ctx context.Context, rideID, viewer types.ID) (*codrive.RideView, error)
}

type RideHandler struct {
	rides RideService
	views RideViewer
}

func NewRideHandler(rides RideService, views RideViewer) *RideHandler {
	return &RideHandler{rides: rides, views: views}
}

type createRideReq struct {
	VehicleID          string     `json:"vehicle_id"`
	Start              addressReq `json:"start"`
	End                addressReq `json:"end"`
	ArrivalDate        string     `json:"arrival_date"`
	ArrivalTime        string     `json:"arrival_time"`
	MaxPassengers      int        `json:"max_passengers"`
	MaxRequestDistance *int       `json:"max_request_distance"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		DriverID:           caller(c),
		VehicleID:          req.VehicleID,
		Start:              req.Start.toAddress(),
		End:                req.End.toAddress(),
		ArrivalDate:        req.ArrivalDate,
		ArrivalTime:        req.ArrivalTime,
		MaxPassengers:      req.MaxPassengers,
		MaxRequestDistance: req.MaxRequestDistance,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RideHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.views.RideView(c.Request.Context(), id, caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *RideHandler) ListMine(c *gin.Context) {
	rides, err := h.rides.ListByDriver(c.Request.Context(), caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []ride.Ride{}
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.rides.Complete(c.Request.Context(), ride.DriverCommand{RideID: id, ActorID: caller(c)})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RideHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rides.Delete(c.Request.Context(), ride.DriverCommand{RideID: id, ActorID: caller(c)}); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
