package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"skillswap/carousel"
	"skillswap/editor"
	"skillswap/middleware"
	"skillswap/models"
	"skillswap/notify"
	"skillswap/websocket"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type Broadcaster interface {
	Publish(ev websocket.Event)
}

type PushNotifier interface {
	PublicKey() string
	Subscribe(sessionID string, sub webpush.Subscription)
	Forget(sessionID string)
	Notify(ctx context.Context, sessionID string, msg notify.Message) error
}

type Options struct {
	Store    *editor.Store
	Tokens   *middleware.SessionTokens
	Uploader Uploader
	Events   Broadcaster
	Push     PushNotifier
	Rotator  *carousel.Rotator
	Features []models.Feature
	Showcase models.ShowcaseProfile
	Logger   *zap.Logger
	// BaseContext bounds background work such as avatar uploads.
	BaseContext context.Context
}

type Handler struct {
	store    *editor.Store
	tokens   *middleware.SessionTokens
	uploader Uploader
	events   Broadcaster
	push     PushNotifier
	rotator  *carousel.Rotator
	features []models.Feature
	showcase models.ShowcaseProfile
	log      *zap.Logger
	baseCtx  context.Context
	bg       sync.WaitGroup
}

func New(opts Options) *Handler {
	h := &Handler{
		store:    opts.Store,
		tokens:   opts.Tokens,
		uploader: opts.Uploader,
		events:   opts.Events,
		push:     opts.Push,
		rotator:  opts.Rotator,
		features: opts.Features,
		showcase: opts.Showcase,
		log:      opts.Logger,
		baseCtx:  opts.BaseContext,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.baseCtx == nil {
		h.baseCtx = context.Background()
	}
	if h.events == nil {
		h.events = discardEvents{}
	}
	if h.rotator != nil {
		h.rotator.OnAdvance(h.publishFeature)
	}
	if h.store != nil && h.push != nil {
		h.store.OnExpire(func(id primitive.ObjectID) {
			h.push.Forget(id.Hex())
		})
	}
	return h
}

// Wait blocks until background uploads and notifications have finished.
func (h *Handler) Wait() {
	h.bg.Wait()
}

type discardEvents struct{}

func (discardEvents) Publish(websocket.Event) {}

func abortWithError(c *gin.Context, status int, errMsg, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errMsg,
		"code":    code,
		"message": message,
	})
}

// editError maps editor failures onto HTTP responses.
func (h *Handler) editError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound), errors.Is(err, editor.ErrClosed):
		abortWithError(c, http.StatusNotFound, "Session not found", "SESSION_NOT_FOUND", "The editor session has ended or expired")
	case errors.Is(err, editor.ErrUnknownField):
		abortWithError(c, http.StatusBadRequest, "Unknown field", "INVALID_FIELD", err.Error())
	case errors.Is(err, editor.ErrInvalidValue):
		abortWithError(c, http.StatusBadRequest, "Invalid value", "INVALID_VALUE", err.Error())
	case errors.Is(err, editor.ErrUnknownSkillList):
		abortWithError(c, http.StatusBadRequest, "Unknown skill list", "INVALID_SKILL_LIST", "Skill list must be offered or wanted")
	default:
		h.log.Error("[Edit] unexpected error", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Internal error", "INTERNAL", "Something went wrong")
	}
}

// sessionID reads the session set by middleware.SessionAuth.
func sessionID(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.SessionKey))
	if err != nil {
		return primitive.NilObjectID, editor.ErrSessionNotFound
	}
	return id, nil
}

func (h *Handler) sessionState(c *gin.Context) (primitive.ObjectID, *editor.State, bool) {
	id, err := sessionID(c)
	if err != nil {
		h.editError(c, err)
		return id, nil, false
	}
	state, err := h.store.Get(id)
	if err != nil {
		h.editError(c, err)
		return id, nil, false
	}
	return id, state, true
}
