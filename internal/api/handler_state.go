package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hvac-maintenance-backend/internal/model"
)

// stateResponse is the full session view the page renders from.
type stateResponse struct {
	Current      *model.MaintenanceWork  `json:"current"`
	Today        []model.MaintenanceWork `json:"today"`
	Past         []model.MaintenanceWork `json:"past"`
	ShiftClosed  bool                    `json:"shiftClosed"`
	ShiftManager shiftManagerResponse    `json:"shiftManager"`
}

type shiftManagerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// GetState handles the GET /api/state request.
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse{
		Current:     h.session.Current(),
		Today:       h.session.Today(),
		Past:        h.session.Past(),
		ShiftClosed: h.session.ShiftClosed(),
		ShiftManager: shiftManagerResponse{
			Name:  h.cfg.ShiftManagerName,
			Phone: h.cfg.ShiftManagerPhone,
		},
	})
}
