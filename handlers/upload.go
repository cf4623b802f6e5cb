package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillswap/editor"
	"skillswap/websocket"
)

const maxAvatarSize = 10 << 20

// UploadAvatar accepts an image and uploads it in the background. The
// response does not wait for the upload; the outcome arrives over the
// websocket as avatar_uploaded or avatar_upload_failed, and on success the
// draft's avatar is set.
func (h *Handler) UploadAvatar(c *gin.Context) {
	id, state, ok := h.sessionState(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarSize+1<<20)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "No file provided", "UPLOAD_REJECTED", "Send the image in a multipart field named file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read file", "UPLOAD_REJECTED", err.Error())
		return
	}
	if len(data) > maxAvatarSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "File too large", "UPLOAD_REJECTED", "Images are limited to 10MB")
		return
	}
	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		abortWithError(c, http.StatusUnsupportedMediaType, "Not an image", "UPLOAD_REJECTED", "Detected "+mt.String())
		return
	}

	uploadID := uuid.NewString()
	h.log.Info("[UploadAvatar] file selected",
		zap.String("sessionId", id.Hex()),
		zap.String("uploadId", uploadID),
		zap.String("file", header.Filename),
		zap.Int("bytes", len(data)),
	)

	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		h.runUpload(h.baseCtx, id.Hex(), uploadID, state, header.Filename, data)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"uploadId": uploadID,
		"status":   "uploading",
	})
}

func (h *Handler) runUpload(ctx context.Context, sid, uploadID string, state *editor.State, filename string, data []byte) {
	url, err := h.uploader.Upload(ctx, bytes.NewReader(data), filename)
	if err != nil {
		h.log.Warn("[UploadAvatar] upload failed", zap.String("uploadId", uploadID), zap.Error(err))
		h.events.Publish(websocket.Event{
			Type:    "avatar_upload_failed",
			Payload: gin.H{"uploadId": uploadID, "error": err.Error()},
			Session: sid,
		})
		return
	}

	if err := state.SetAvatar(url); err != nil {
		if errors.Is(err, editor.ErrClosed) {
			h.log.Info("[UploadAvatar] session ended before upload finished", zap.String("uploadId", uploadID))
		}
		return
	}
	h.events.Publish(websocket.Event{
		Type:    "avatar_uploaded",
		Payload: gin.H{"uploadId": uploadID, "url": url},
		Session: sid,
	})
}
