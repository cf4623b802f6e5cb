package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillswap/viewer"
	"skillswap/websocket"
)

func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.showcase)
}

type swipeRequest struct {
	Tab        viewer.Tab `json:"tab" binding:"required"`
	TouchStart *float64   `json:"touchStart"`
	TouchEnd   *float64   `json:"touchEnd"`
}

// SwipeTab resolves a touch gesture on the tab strip to the tab to show.
func (h *Handler) SwipeTab(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request data", "INVALID_VALUE", err.Error())
		return
	}

	tab, err := viewer.SwipeTab(req.Tab, req.TouchStart, req.TouchEnd)
	if errors.Is(err, viewer.ErrUnknownTab) {
		abortWithError(c, http.StatusBadRequest, "Unknown tab", "INVALID_VALUE", "Tab must be one of overview, projects, experience, skills")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab})
}

type panRequest struct {
	Index   int     `json:"index" binding:"min=0"`
	OffsetX float64 `json:"offsetX"`
}

// PanProject moves the project carousel after a drag.
func (h *Handler) PanProject(c *gin.Context) {
	var req panRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request data", "INVALID_VALUE", err.Error())
		return
	}

	projects := h.showcase.Projects
	idx := viewer.PanProject(req.Index, len(projects), req.OffsetX)

	resp := gin.H{"index": idx}
	if idx < len(projects) {
		resp["project"] = projects[idx]
	}
	c.JSON(http.StatusOK, resp)
}

// GetLanding returns the feature slides and the one currently shown.
func (h *Handler) GetLanding(c *gin.Context) {
	current := 0
	var intervalMs int64
	if h.rotator != nil {
		current = h.rotator.Current()
		intervalMs = h.rotator.Interval().Milliseconds()
	}
	c.JSON(http.StatusOK, gin.H{
		"features":   h.features,
		"current":    current,
		"intervalMs": intervalMs,
	})
}

func (h *Handler) publishFeature(index int) {
	payload := gin.H{"index": index}
	if index < len(h.features) {
		payload["feature"] = h.features[index]
	}
	h.events.Publish(websocket.Event{Type: "feature_changed", Payload: payload})
}
