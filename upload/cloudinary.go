// Package upload sends images to Cloudinary with an unsigned upload preset.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// ErrUploadFailed is the only error Upload reports. Status codes and response
// bodies are logged, not returned.
var ErrUploadFailed = errors.New("upload failed")

type Config struct {
	CloudName    string
	UploadPreset string
	// UploadPrefix overrides the API host, e.g. for tests.
	UploadPrefix string
	Folder       string
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	preset string
	folder string
	log    *zap.Logger
}

func NewCloudinary(cfg Config, log *zap.Logger) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.UploadPreset == "" {
		return nil, errors.New("cloudinary: cloud name and upload preset are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	// Unsigned uploads need neither key nor secret.
	cld, err := cloudinary.NewFromParams(cfg.CloudName, "", "")
	if err != nil {
		return nil, err
	}
	if cfg.UploadPrefix != "" {
		prefix := strings.TrimRight(cfg.UploadPrefix, "/")
		// The upload API holds its own copy of the configuration.
		cld.Config.API.UploadPrefix = prefix
		cld.Upload.Config.API.UploadPrefix = prefix
	}
	cld.Upload.Client.Transport = statusTransport{base: http.DefaultTransport}

	return &Cloudinary{
		cld:    cld,
		preset: cfg.UploadPreset,
		folder: cfg.Folder,
		log:    log,
	}, nil
}

// Upload posts the file and returns its secure URL. There is no retry.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	params := uploader.UploadParams{Folder: c.folder, ResourceType: "image"}

	res, err := c.cld.Upload.UnsignedUpload(ctx, file, c.preset, params)
	if err != nil {
		c.log.Warn("[Upload] request failed", zap.String("file", filename), zap.Error(err))
		return "", ErrUploadFailed
	}
	if res.Error.Message != "" {
		c.log.Warn("[Upload] rejected", zap.String("file", filename), zap.String("reason", res.Error.Message))
		return "", ErrUploadFailed
	}
	if res.SecureURL == "" {
		c.log.Warn("[Upload] response without secure_url", zap.String("file", filename))
		return "", ErrUploadFailed
	}

	c.log.Info("[Upload] stored", zap.String("file", filename), zap.String("url", res.SecureURL))
	return res.SecureURL, nil
}

// statusTransport turns any non-2xx response into an error. The SDK decodes
// the body whatever the status code.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
