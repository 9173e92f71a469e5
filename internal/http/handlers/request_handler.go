// README: Join request handlers: preview, request, driver decisions, leave, refresh and pay.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codrive/internal/modules/codrive"
	"codrive/internal/types"
)

type RequestService interface {
	Preview(ctx context.Context, cmd codrive.RequestCommand) (codrive.CostPreview, error)
	Create(ctx context.Context, cmd codrive.RequestCommand) (*codrive.JoinRequest, error)
	Get(ctx context.Context, id, viewer types.ID) (*codrive.JoinRequest, error)
	ListMine(ctx context.Context, requesterID types.ID) ([]codrive.JoinRequest, error)
	Accept(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)
	Refuse(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)
	Withdraw(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)
	Leave(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)
	Refresh(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)
	Pay(ctx context.Context, cmd codrive.PayCommand) (*codrive.JoinRequest, error)
}

type RequestHandler struct {
	requests RequestService
}

func NewRequestHandler(svc RequestService) *RequestHandler {
	return &RequestHandler{requests: svc}
}

type joinReq struct {
	Pickup     addressReq `json:"pickup"`
	Passengers int        `json:"passengers"`
	Message    string     `json:"message"`
}

func (h *RequestHandler) bindJoin(c *gin.Context) (codrive.RequestCommand, bool) {
	rideID, ok := pathID(c, "id")
	if !ok {
		return codrive.RequestCommand{}, false
	}
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid json")
		return codrive.RequestCommand{}, false
	}
	if req.Passengers == 0 {
		req.Passengers = 1
	}
	return codrive.RequestCommand{
		RideID:      rideID,
		RequesterID: caller(c),
		Pickup:      req.Pickup.toAddress(),
		Passengers:  req.Passengers,
		Message:     req.Message,
	}, true
}

func (h *RequestHandler) Preview(c *gin.Context) {
	cmd, ok := h.bindJoin(c)
	if !ok {
		return
	}
	p, err := h.requests.Preview(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *RequestHandler) Create(c *gin.Context) {
	cmd, ok := h.bindJoin(c)
	if !ok {
		return
	}
	r, err := h.requests.Create(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.requests.Get(c.Request.Context(), id, caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	rs, err := h.requests.ListMine(c.Request.Context(), caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if rs == nil {
		rs = []codrive.JoinRequest{}
	}
	writeJSON(c, http.StatusOK, gin.H{"requests": rs})
}

type actorOp func(ctx context.Context, cmd codrive.ActorCommand) (*codrive.JoinRequest, error)

func (h *RequestHandler) act(op actorOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		r, err := op(c.Request.Context(), codrive.ActorCommand{RequestID: id, ActorID: caller(c)})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, r)
	}
}

func (h *RequestHandler) Accept() gin.HandlerFunc   { return h.act(h.requests.Accept) }
func (h *RequestHandler) Refuse() gin.HandlerFunc   { return h.act(h.requests.Refuse) }
func (h *RequestHandler) Withdraw() gin.HandlerFunc { return h.act(h.requests.Withdraw) }
func (h *RequestHandler) Leave() gin.HandlerFunc    { return h.act(h.requests.Leave) }
func (h *RequestHandler) Refresh() gin.HandlerFunc  { return h.act(h.requests.Refresh) }

type payReq struct {
	Rating *int `json:"rating"`
}

func (h *RequestHandler) Pay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", "invalid json")
			return
		}
	}
	r, err := h.requests.Pay(c.Request.Context(), codrive.PayCommand{RequestID: id, ActorID: caller(c), Rating: req.Rating})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
