// Package notify delivers editor acknowledgments as web-push notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

type VAPID struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendFunc func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Pusher keeps at most one push subscription per editor session.
type Pusher struct {
	opts webpush.Options
	send sendFunc
	log  *zap.Logger

	mu   sync.Mutex
	subs map[string]webpush.Subscription
}

func NewPusher(keys VAPID, log *zap.Logger) *Pusher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pusher{
		opts: webpush.Options{
			Subscriber:      keys.Subscriber,
			VAPIDPublicKey:  keys.PublicKey,
			VAPIDPrivateKey: keys.PrivateKey,
			TTL:             30,
		},
		send: webpush.SendNotificationWithContext,
		log:  log,
		subs: make(map[string]webpush.Subscription),
	}
}

func (p *Pusher) PublicKey() string { return p.opts.VAPIDPublicKey }

func (p *Pusher) Subscribe(sessionID string, sub webpush.Subscription) {
	p.mu.Lock()
	p.subs[sessionID] = sub
	p.mu.Unlock()
}

func (p *Pusher) Forget(sessionID string) {
	p.mu.Lock()
	delete(p.subs, sessionID)
	p.mu.Unlock()
}

// Notify pushes msg to the session's subscriber, if it has one.
func (p *Pusher) Notify(ctx context.Context, sessionID string, msg Message) error {
	p.mu.Lock()
	sub, ok := p.subs[sessionID]
	p.mu.Unlock()
	if !ok {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := p.send(ctx, payload, &sub, &p.opts)
	if err != nil {
		return fmt.Errorf("push to session %s: %w", sessionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		p.Forget(sessionID)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push to session %s: status %d", sessionID, resp.StatusCode)
	}
	p.log.Debug("[Push] delivered", zap.String("sessionId", sessionID), zap.String("title", msg.Title))
	return nil
}
