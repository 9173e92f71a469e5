// README: Bonus catalogue, redemption and the caller's redeemed bonuses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codrive/internal/modules/ledger"
	"codrive/internal/types"
)

type BonusService interface {
	List(ctx context.Context) ([]ledger.Bonus, error)
	Create(ctx context.Context, cmd ledger.CreateBonusCommand) (*ledger.Bonus, error)
	Delete(ctx context.Context, actorID, bonusID types.ID) error
	Redeem(ctx context.Context, userID, bonusID types.ID) (*ledger.Redemption, error)
	Redemptions(ctx context.Context, userID types.ID) ([]ledger.Redemption, error)
}

type BonusHandler struct {
	bonuses BonusService
}

func NewBonusHandler(bonuses BonusService) *BonusHandler {
	return &BonusHandler{bonuses: bonuses}
}

type createBonusReq struct {
	Name string `json:"name" binding:"required"`
	Cost *int64 `json:"cost" binding:"required"`
}

func (h *BonusHandler) List(c *gin.Context) {
	list, err := h.bonuses.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []ledger.Bonus{}
	}
	writeJSON(c, http.StatusOK, list)
}

func (h *BonusHandler) Create(c *gin.Context) {
	var req createBonusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	b, err := h.bonuses.Create(c.Request.Context(), ledger.CreateBonusCommand{
		ActorID: caller(c),
		Name:    req.Name,
		Cost:    *req.Cost,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BonusHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.bonuses.Delete(c.Request.Context(), caller(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BonusHandler) Redeem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.bonuses.Redeem(c.Request.Context(), caller(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *BonusHandler) ListMine(c *gin.Context) {
	list, err := h.bonuses.Redemptions(c.Request.Context(), caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []ledger.Redemption{}
	}
	writeJSON(c, http.StatusOK, list)
}
