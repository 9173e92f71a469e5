// README: Point balance of the caller.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codrive/internal/modules/ledger"
	"codrive/internal/types"
)

type PointsService interface {
	Balance(ctx context.Context, userID types.ID) (ledger.Account, error)
}

type AccountHandler struct {
	points PointsService
}

func NewAccountHandler(points PointsService) *AccountHandler {
	return &AccountHandler{points: points}
}

func (h *AccountHandler) Points(c *gin.Context) {
	acct, err := h.points.Balance(c.Request.Context(), caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, acct)
}
