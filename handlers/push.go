package handlers

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.push == nil || h.push.PublicKey() == "" {
		abortWithError(c, http.StatusServiceUnavailable, "VAPID public key not configured", "PUSH_DISABLED", "Contact administrator")
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.push.PublicKey()})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// SubscribePush registers where save and discard acknowledgments for the
// current session are pushed.
func (h *Handler) SubscribePush(c *gin.Context) {
	id, _, ok := h.sessionState(c)
	if !ok {
		return
	}
	if h.push == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Push not configured", "PUSH_DISABLED", "Contact administrator")
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription", "INVALID_VALUE", err.Error())
		return
	}

	h.push.Subscribe(id.Hex(), webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys:     webpush.Keys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
	})
	// The session may have ended while the body was read.
	if _, err := h.store.Get(id); err != nil {
		h.push.Forget(id.Hex())
		h.editError(c, err)
		return
	}
	h.log.Info("[SubscribePush] subscription stored", zap.String("sessionId", id.Hex()))
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}
