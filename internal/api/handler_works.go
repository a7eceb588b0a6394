package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hvac-maintenance-backend/internal/model"
	"hvac-maintenance-backend/internal/notification"
)

type startWorkRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

// StartWork handles POST /api/works.
func (h *Handler) StartWork(c *gin.Context) {
	var req startWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workID := h.session.Start(req.DeviceID)
	c.JSON(http.StatusCreated, gin.H{"workId": workID})
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateNotes handles PUT /api/works/:id/notes.
func (h *Handler) UpdateNotes(c *gin.Context) {
	workID := c.Param("id")
	if _, ok := h.session.Find(workID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}

	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.session.UpdateNotes(workID, req.Notes)
	c.Status(http.StatusNoContent)
}

type addPhotoRequest struct {
	URL         string `json:"url" binding:"required"`
	Description string `json:"description"`
}

// AddPhoto handles POST /api/works/:id/photos.
func (h *Handler) AddPhoto(c *gin.Context) {
	workID := c.Param("id")
	if _, ok := h.session.Find(workID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}

	var req addPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photo := model.MaintenancePhoto{
		ID:          "photo-" + uuid.NewString(),
		URL:         req.URL,
		Description: req.Description,
		Timestamp:   time.Now().UTC(),
	}
	h.session.AddPhoto(c.Request.Context(), workID, photo)
	c.JSON(http.StatusCreated, gin.H{"photoId": photo.ID})
}

// ToggleMalfunction handles POST /api/works/:id/malfunction.
func (h *Handler) ToggleMalfunction(c *gin.Context) {
	workID := c.Param("id")
	if _, ok := h.session.Find(workID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}

	h.session.ToggleMalfunction(workID)

	work, ok := h.session.Find(workID)
	if ok && work.IsMalfunctioning && h.pool != nil {
		h.pool.Dispatch(notification.Event{
			Topic:   notification.TopicMalfunction,
			Message: fmt.Sprintf("Hibás készülék: %s (%s)", work.DeviceID, work.DeviceLocation),
		})
	}
	c.JSON(http.StatusOK, gin.H{"isMalfunctioning": work.IsMalfunctioning})
}

// CompleteWork handles POST /api/works/:id/complete. A work without at
// least one photo is rejected here, before the state machine is invoked.
func (h *Handler) CompleteWork(c *gin.Context) {
	workID := c.Param("id")
	work, ok := h.session.Find(workID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}
	if len(work.Photos) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one photo is required to complete a work"})
		return
	}

	h.session.Complete(workID)
	c.Status(http.StatusNoContent)
}

// AbortWork handles DELETE /api/works/:id.
func (h *Handler) AbortWork(c *gin.Context) {
	workID := c.Param("id")
	if _, ok := h.session.Find(workID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}

	h.session.Abort(workID)
	c.Status(http.StatusNoContent)
}

// MarkEdited handles POST /api/works/:id/edited.
func (h *Handler) MarkEdited(c *gin.Context) {
	workID := c.Param("id")
	if _, ok := h.session.Find(workID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
		return
	}

	h.session.MarkEdited(workID)
	c.Status(http.StatusNoContent)
}

// CloseShift handles POST /api/shift/close.
func (h *Handler) CloseShift(c *gin.Context) {
	h.session.CloseShift()
	if h.pool != nil {
		h.pool.Dispatch(notification.Event{
			Topic:   notification.TopicShiftClosed,
			Message: "A műszak lezárva.",
		})
	}
	c.Status(http.StatusNoContent)
}

// ResetSession handles POST /api/reset.
func (h *Handler) ResetSession(c *gin.Context) {
	photosCleared := h.session.Reset(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"photosCleared": photosCleared})
}
