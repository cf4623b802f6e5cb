package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"skillswap/editor"
	"skillswap/notify"
	"skillswap/websocket"
)

// OpenSession starts an editor on a fresh copy of the seed profile.
func (h *Handler) OpenSession(c *gin.Context) {
	id, state := h.store.Open()

	token, expires, err := h.tokens.Issue(id.Hex())
	if err != nil {
		h.log.Error("[OpenSession] token signing failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to open editor", "INTERNAL", "Could not issue session token")
		return
	}

	h.log.Info("[OpenSession] editor opened", zap.String("sessionId", id.Hex()))
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": id.Hex(),
		"token":     token,
		"expiresAt": expires.Unix(),
		"draft":     state.Draft(),
		"pending":   state.Pending(),
	})
}

func (h *Handler) GetDraft(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		h.editError(c, err)
		return
	}
	view, err := h.store.View(id)
	if err != nil {
		h.editError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type fieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

// SetField replaces one scalar field of the draft.
func (h *Handler) SetField(c *gin.Context) {
	_, state, ok := h.sessionState(c)
	if !ok {
		return
	}

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request data", "INVALID_VALUE", "Body must be {\"value\": string}")
		return
	}

	if err := state.SetField(editor.Field(c.Param("field")), *req.Value); err != nil {
		h.editError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": state.Draft()})
}

type skillRequest struct {
	Text *string `json:"text"`
}

func (h *Handler) SetPendingSkill(c *gin.Context) {
	_, state, ok := h.sessionState(c)
	if !ok {
		return
	}
	kind, err := editor.ParseSkillList(c.Param("kind"))
	if err != nil {
		h.editError(c, err)
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request data", "INVALID_VALUE", "Body must be {\"text\": string}")
		return
	}
	if err := state.SetPendingSkill(kind, *req.Text); err != nil {
		h.editError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": state.Pending()})
}

// AddSkill appends the body's text, or the list's pending input when the
// body has none. Blank input is not an error; "added" reports what happened.
func (h *Handler) AddSkill(c *gin.Context) {
	_, state, ok := h.sessionState(c)
	if !ok {
		return
	}
	kind, err := editor.ParseSkillList(c.Param("kind"))
	if err != nil {
		h.editError(c, err)
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Invalid request data", "INVALID_VALUE", "Body must be {\"text\": string} or empty")
		return
	}

	var added bool
	if req.Text != nil {
		added, err = state.AddSkill(kind, *req.Text)
	} else {
		added, err = state.CommitPendingSkill(kind)
	}
	if err != nil {
		h.editError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":   added,
		"draft":   state.Draft(),
		"pending": state.Pending(),
	})
}

// RemoveSkill drops one entry by position. Indexes outside the list are
// ignored and reported as "removed": false.
func (h *Handler) RemoveSkill(c *gin.Context) {
	_, state, ok := h.sessionState(c)
	if !ok {
		return
	}
	kind, err := editor.ParseSkillList(c.Param("kind"))
	if err != nil {
		h.editError(c, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid index", "INVALID_INDEX", "Index must be an integer")
		return
	}

	removed, err := state.RemoveSkill(kind, index)
	if err != nil {
		h.editError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "draft": state.Draft()})
}

// Save ends the session and acknowledges with the saved snapshot. Nothing is
// written anywhere.
func (h *Handler) Save(c *gin.Context) {
	h.finish(c, "profile_saved", h.store.Save)
}

// Discard ends the session. Edited fields are not restored.
func (h *Handler) Discard(c *gin.Context) {
	h.finish(c, "profile_discarded", h.store.Discard)
}

func (h *Handler) finish(c *gin.Context, event string, op func(id primitive.ObjectID) (editor.Outcome, error)) {
	id, err := sessionID(c)
	if err != nil {
		h.editError(c, err)
		return
	}
	out, err := op(id)
	if err != nil {
		h.editError(c, err)
		return
	}

	sid := id.Hex()
	h.log.Info("[Edit] session finished",
		zap.String("sessionId", sid),
		zap.String("outcome", event),
		zap.Any("profile", out.Snapshot),
	)
	h.events.Publish(websocket.Event{Type: event, Payload: out, Session: sid})
	h.acknowledge(sid, out)

	c.JSON(http.StatusOK, out)
}

// acknowledge pushes the outcome to the session's push subscriber, if any,
// without holding up the response.
func (h *Handler) acknowledge(sessionID string, out editor.Outcome) {
	if h.push == nil {
		return
	}
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		defer h.push.Forget(sessionID)
		msg := notify.Message{Title: "Edit profile", Body: out.Message}
		if err := h.push.Notify(h.baseCtx, sessionID, msg); err != nil {
			h.log.Warn("[Push] acknowledgment not delivered", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}()
}
