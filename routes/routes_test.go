package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/carousel"
	"skillswap/editor"
	"skillswap/handlers"
	"skillswap/middleware"
	"skillswap/models"
	"skillswap/notify"
	"skillswap/upload"
	"skillswap/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type fakeUploader struct {
	url string
	err error
}

func (f fakeUploader) Upload(_ context.Context, file io.Reader, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, file)
	return f.url, f.err
}

type recorder struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (r *recorder) Publish(ev websocket.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakePush struct {
	mu       sync.Mutex
	subs     map[string]webpush.Subscription
	messages []notify.Message
}

func (p *fakePush) PublicKey() string { return "pub-key" }

func (p *fakePush) Subscribe(id string, sub webpush.Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subs == nil {
		p.subs = map[string]webpush.Subscription{}
	}
	p.subs[id] = sub
}

func (p *fakePush) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subs, id)
}

func (p *fakePush) Notify(_ context.Context, id string, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.subs[id]; ok {
		p.messages = append(p.messages, msg)
	}
	return nil
}

type testEnv struct {
	router  *gin.Engine
	handler *handlers.Handler
	store   *editor.Store
	events  *recorder
	push    *fakePush
	rotator *carousel.Rotator
}

func newEnv(t *testing.T, up handlers.Uploader) *testEnv {
	t.Helper()
	return newEnvTTL(t, up, time.Hour)
}

func newEnvTTL(t *testing.T, up handlers.Uploader, ttl time.Duration) *testEnv {
	t.Helper()
	store := editor.NewStore(models.SeedDraft, ttl, nil)
	tokens := middleware.NewSessionTokens("test-secret", time.Hour)
	rot, err := carousel.NewRotator(3, carousel.DefaultInterval, nil)
	require.NoError(t, err)

	env := &testEnv{store: store, events: &recorder{}, push: &fakePush{}, rotator: rot}
	env.handler = handlers.New(handlers.Options{
		Store:    store,
		Tokens:   tokens,
		Uploader: up,
		Events:   env.events,
		Push:     env.push,
		Rotator:  rot,
		Features: models.SeedFeatures(),
		Showcase: models.SeedShowcase(),
	})
	env.router = SetupRouter(env.handler, Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		Tokens:         tokens,
		Limiter:        middleware.NewIPRateLimiter(100, time.Minute),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (e *testEnv) open(t *testing.T) string {
	t.Helper()
	w, body := e.do(t, http.MethodPost, "/api/edit/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return body["token"].(string)
}

func skills(body map[string]any, key string) []any {
	return body["draft"].(map[string]any)[key].([]any)
}

func TestOpenSessionReturnsSeed(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	w, body := env.do(t, http.MethodPost, "/api/edit/session", "", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, body["token"])
	assert.Len(t, body["sessionId"], 24)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "Alexandra Chen", draft["name"])
	assert.Equal(t, "weekends", draft["availability"])
	assert.Equal(t, "Public", draft["profileVisibility"])
	assert.Equal(t, 1, env.store.Len())
}

func TestSkillScenario(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)

	w, body := env.do(t, http.MethodPost, "/api/edit/skills/offered", tok, gin.H{"text": "  Vue  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["added"])
	assert.Equal(t, []any{"UI/UX Design", "React", "Figma", "Vue"}, skills(body, "skillsOffered"))

	w, body = env.do(t, http.MethodDelete, "/api/edit/skills/offered/1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["removed"])
	assert.Equal(t, []any{"UI/UX Design", "Figma", "Vue"}, skills(body, "skillsOffered"))
}

func TestBlankSkillAndBadIndexAreNoops(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)

	w, body := env.do(t, http.MethodPost, "/api/edit/skills/wanted", tok, gin.H{"text": "   "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["added"])
	assert.Len(t, skills(body, "skillsWanted"), 3)

	for _, idx := range []string{"-1", "3", "99"} {
		w, body = env.do(t, http.MethodDelete, "/api/edit/skills/wanted/"+idx, tok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, body["removed"], idx)
		assert.Len(t, skills(body, "skillsWanted"), 3)
	}

	w, body = env.do(t, http.MethodDelete, "/api/edit/skills/wanted/abc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INDEX", body["code"])

	w, body = env.do(t, http.MethodPost, "/api/edit/skills/hobbies", tok, gin.H{"text": "Chess"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SKILL_LIST", body["code"])
}

func TestPendingSkillCommit(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)

	w, body := env.do(t, http.MethodPut, "/api/edit/skills/wanted/pending", tok, gin.H{"text": " Rust "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, " Rust ", body["pending"].(map[string]any)["wanted"])

	w, body = env.do(t, http.MethodPost, "/api/edit/skills/wanted", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["added"])
	assert.Equal(t, "Rust", skills(body, "skillsWanted")[3])
	assert.Equal(t, "", body["pending"].(map[string]any)["wanted"])
}

func TestSetField(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)

	w, body := env.do(t, http.MethodPut, "/api/edit/fields/bio", tok, gin.H{"value": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", body["draft"].(map[string]any)["bio"])

	w, body = env.do(t, http.MethodPut, "/api/edit/fields/availability", tok, gin.H{"value": "flexible"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "flexible", body["draft"].(map[string]any)["availability"])

	w, body = env.do(t, http.MethodPut, "/api/edit/fields/profileVisibility", tok, gin.H{"value": "Everyone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_VALUE", body["code"])

	w, body = env.do(t, http.MethodPut, "/api/edit/fields/password", tok, gin.H{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FIELD", body["code"])

	w, _ = env.do(t, http.MethodPut, "/api/edit/fields/name", tok, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveEndsSession(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)

	w, _ := env.do(t, http.MethodPost, "/api/edit/subscribe", tok, gin.H{
		"endpoint": "https://push.example/abc",
		"keys":     gin.H{"p256dh": "k", "auth": "a"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	env.do(t, http.MethodPut, "/api/edit/fields/title", tok, gin.H{"value": "Staff Designer"})

	w, body := env.do(t, http.MethodPost, "/api/edit/save", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, editor.SavedMessage, body["message"])
	assert.Equal(t, "Staff Designer", body["profile"].(map[string]any)["title"])

	env.handler.Wait()
	assert.Equal(t, []string{"profile_saved"}, env.events.types())
	require.Len(t, env.push.messages, 1)
	assert.Equal(t, editor.SavedMessage, env.push.messages[0].Body)

	w, body = env.do(t, http.MethodGet, "/api/edit", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", body["code"])
	assert.Equal(t, 0, env.store.Len())
}

func TestDiscardKeepsEdits(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	tok := env.open(t)
	env.do(t, http.MethodPut, "/api/edit/fields/name", tok, gin.H{"value": "Alex"})

	w, body := env.do(t, http.MethodPost, "/api/edit/discard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, editor.DiscardedMessage, body["message"])
	assert.Equal(t, "Alex", body["profile"].(map[string]any)["name"])

	w, _ = env.do(t, http.MethodPost, "/api/edit/discard", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditRequiresToken(t *testing.T) {
	env := newEnv(t, fakeUploader{})

	w, body := env.do(t, http.MethodGet, "/api/edit", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	other := middleware.NewSessionTokens("other-secret", time.Hour)
	tok, _, err := other.Issue("0123456789abcdef01234567")
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/api/edit", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func uploadRequest(t *testing.T, token string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/edit/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAvatarUploadCompletesInBackground(t *testing.T) {
	env := newEnv(t, fakeUploader{url: "https://x/y.png"})
	tok := env.open(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadRequest(t, tok, pngBytes))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	env.handler.Wait()
	assert.Equal(t, []string{"avatar_uploaded"}, env.events.types())

	_, body := env.do(t, http.MethodGet, "/api/edit", tok, nil)
	assert.Equal(t, "https://x/y.png", body["draft"].(map[string]any)["avatar"])
}

func TestAvatarUploadFailureIsReported(t *testing.T) {
	env := newEnv(t, fakeUploader{err: upload.ErrUploadFailed})
	tok := env.open(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadRequest(t, tok, pngBytes))
	require.Equal(t, http.StatusAccepted, w.Code)

	env.handler.Wait()
	assert.Equal(t, []string{"avatar_upload_failed"}, env.events.types())

	_, body := env.do(t, http.MethodGet, "/api/edit", tok, nil)
	_, hasAvatar := body["draft"].(map[string]any)["avatar"]
	assert.False(t, hasAvatar)
}

func TestAvatarUploadRejectsNonImage(t *testing.T) {
	env := newEnv(t, fakeUploader{url: "https://x/y.png"})
	tok := env.open(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadRequest(t, tok, []byte("just some text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	env.handler.Wait()
	assert.Empty(t, env.events.types())
}

func TestProfileViewer(t *testing.T) {
	env := newEnv(t, fakeUploader{})

	w, body := env.do(t, http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "March 2022", body["joinDate"])
	assert.Len(t, body["projects"], 3)

	w, body = env.do(t, http.MethodPost, "/api/profile/tabs/swipe", "", gin.H{"tab": "overview", "touchStart": 300, "touchEnd": 100})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "projects", body["tab"])

	w, _ = env.do(t, http.MethodPost, "/api/profile/tabs/swipe", "", gin.H{"tab": "reviews"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/profile/projects/pan", "", gin.H{"index": 0, "offsetX": -120})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["index"])
	assert.Equal(t, "Mobile Banking App", body["project"].(map[string]any)["title"])
}

func TestLandingFollowsRotator(t *testing.T) {
	env := newEnv(t, fakeUploader{})

	_, body := env.do(t, http.MethodGet, "/api/landing", "", nil)
	assert.Equal(t, float64(0), body["current"])
	assert.Equal(t, float64(3000), body["intervalMs"])
	assert.Len(t, body["features"], 3)

	env.rotator.Advance()
	env.rotator.Advance()
	_, body = env.do(t, http.MethodGet, "/api/landing", "", nil)
	assert.Equal(t, float64(2), body["current"])
	assert.Equal(t, []string{"feature_changed", "feature_changed"}, env.events.types())
}

func TestUnknownAPIRoute(t *testing.T) {
	env := newEnv(t, fakeUploader{})
	w, body := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestPushEndpoints(t *testing.T) {
	env := newEnv(t, fakeUploader{})

	w, body := env.do(t, http.MethodGet, "/api/vapid-public-key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pub-key", body["publicKey"])

	tok := env.open(t)
	w, body = env.do(t, http.MethodPost, "/api/edit/subscribe", tok, gin.H{"endpoint": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_VALUE", body["code"])
	assert.Empty(t, env.push.subs)
}

func TestExpiredSessionForgetsPushSubscription(t *testing.T) {
	env := newEnvTTL(t, fakeUploader{}, 10*time.Millisecond)
	tok := env.open(t)

	w, _ := env.do(t, http.MethodPost, "/api/edit/subscribe", tok, gin.H{
		"endpoint": "https://push.example/abc",
		"keys":     gin.H{"p256dh": "k", "auth": "a"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.push.subs, 1)

	assert.Eventually(t, func() bool { return env.store.Sweep() == 1 }, time.Second, 5*time.Millisecond)
	env.push.mu.Lock()
	defer env.push.mu.Unlock()
	assert.Empty(t, env.push.subs)
}
