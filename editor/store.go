package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"skillswap/models"
)

var ErrSessionNotFound = errors.New("editor session not found")

type session struct {
	state  *State
	opened time.Time
}

// Store keeps one State per open editor, keyed by session ID. Sessions end
// on Save, Discard or when they outlive the TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]*session
	seed     func() models.ProfileDraft
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
	expired  []func(id primitive.ObjectID)
}

func NewStore(seed func() models.ProfileDraft, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[primitive.ObjectID]*session),
		seed:     seed,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// OnExpire registers fn to be called for every session Sweep removes.
// Sessions ended by Save or Discard do not trigger it.
func (st *Store) OnExpire(fn func(id primitive.ObjectID)) {
	st.mu.Lock()
	st.expired = append(st.expired, fn)
	st.mu.Unlock()
}

// Open starts an editor session seeded with a fresh draft.
func (st *Store) Open() (primitive.ObjectID, *State) {
	id := primitive.NewObjectID()
	state := NewState(st.seed())

	st.mu.Lock()
	st.sessions[id] = &session{state: state, opened: st.now()}
	st.mu.Unlock()

	st.log.Debug("[Store] session opened", zap.String("sessionId", id.Hex()))
	return id, state
}

func (st *Store) Get(id primitive.ObjectID) (*State, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.state, nil
}

// View returns the session as it is sent to clients.
func (st *Store) View(id primitive.ObjectID) (models.EditSession, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return models.EditSession{}, ErrSessionNotFound
	}
	return models.EditSession{
		ID:      id,
		Draft:   s.state.Draft(),
		Pending: s.state.Pending(),
		Opened:  s.opened.Unix(),
	}, nil
}

// Save finishes the session and removes it from the store.
func (st *Store) Save(id primitive.ObjectID) (Outcome, error) {
	return st.finish(id, (*State).Save)
}

// Discard finishes the session without restoring any field.
func (st *Store) Discard(id primitive.ObjectID) (Outcome, error) {
	return st.finish(id, (*State).Discard)
}

func (st *Store) finish(id primitive.ObjectID, op func(*State) (Outcome, error)) (Outcome, error) {
	state, err := st.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	out, err := op(state)
	if err != nil {
		return Outcome{}, err
	}
	st.remove(id)
	return out, nil
}

func (st *Store) remove(id primitive.ObjectID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions older than the TTL and returns how many it removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var gone []primitive.ObjectID
	for id, s := range st.sessions {
		if s.opened.Before(cutoff) {
			delete(st.sessions, id)
			gone = append(gone, id)
		}
	}
	hooks := append([]func(primitive.ObjectID){}, st.expired...)
	st.mu.Unlock()

	for _, id := range gone {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return len(gone)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.log.Info("[Store] expired editor sessions removed", zap.Int("count", n))
			}
		}
	}
}
