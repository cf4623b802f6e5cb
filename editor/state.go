// Package editor holds the in-memory state behind the profile editor: the
// draft being edited, the pending skill inputs and the save/discard
// lifecycle.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"skillswap/models"
)

var (
	ErrUnknownField     = errors.New("unknown profile field")
	ErrInvalidValue     = errors.New("value not allowed for field")
	ErrUnknownSkillList = errors.New("unknown skill list")
	ErrClosed           = errors.New("editor session closed")
)

const (
	SavedMessage     = "Profile saved successfully!"
	DiscardedMessage = "Changes discarded!"
)

type Field string

const (
	FieldName         Field = "name"
	FieldTitle        Field = "title"
	FieldLocation     Field = "location"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldBio          Field = "bio"
	FieldAvailability Field = "availability"
	FieldVisibility   Field = "profileVisibility"
)

type SkillList string

const (
	Offered SkillList = "offered"
	Wanted  SkillList = "wanted"
)

func ParseSkillList(s string) (SkillList, error) {
	switch SkillList(s) {
	case Offered, Wanted:
		return SkillList(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSkillList, s)
}

// Outcome is what a terminal operation reports back to the user.
type Outcome struct {
	Message  string              `json:"message"`
	Snapshot models.ProfileDraft `json:"profile"`
}

// State is one editor's draft. It is safe for concurrent use; all methods
// fail with ErrClosed once Save or Discard has completed.
type State struct {
	mu      sync.Mutex
	draft   models.ProfileDraft
	pending map[SkillList]string
	closed  bool
}

func NewState(seed models.ProfileDraft) *State {
	return &State{
		draft:   seed.Clone(),
		pending: make(map[SkillList]string, 2),
	}
}

// Draft returns a copy of the current draft.
func (s *State) Draft() models.ProfileDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *State) Pending() models.PendingSkills {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.PendingSkills{Offered: s.pending[Offered], Wanted: s.pending[Wanted]}
}

func (s *State) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetField replaces a scalar field. Text fields take any value; the two enum
// fields only accept their listed members.
func (s *State) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	switch field {
	case FieldName:
		s.draft.Name = value
	case FieldTitle:
		s.draft.Title = value
	case FieldLocation:
		s.draft.Location = value
	case FieldEmail:
		s.draft.Email = value
	case FieldPhone:
		s.draft.Phone = value
	case FieldBio:
		s.draft.Bio = value
	case FieldAvailability:
		a := models.Availability(value)
		if !a.Valid() {
			return fmt.Errorf("%w: availability %q", ErrInvalidValue, value)
		}
		s.draft.Availability = a
	case FieldVisibility:
		v := models.Visibility(value)
		if !v.Valid() {
			return fmt.Errorf("%w: profileVisibility %q", ErrInvalidValue, value)
		}
		s.draft.ProfileVisibility = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (s *State) SetAvatar(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.draft.Avatar = url
	return nil
}

// SetPendingSkill stores the raw text typed into a list's input box.
func (s *State) SetPendingSkill(kind SkillList, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.list(kind); err != nil {
		return err
	}
	s.pending[kind] = text
	return nil
}

// AddSkill appends the trimmed text to the list and clears that list's
// pending input. Blank text changes nothing and reports false.
func (s *State) AddSkill(kind SkillList, raw string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	return s.addLocked(kind, raw)
}

// CommitPendingSkill adds whatever is in the list's pending input.
func (s *State) CommitPendingSkill(kind SkillList) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	return s.addLocked(kind, s.pending[kind])
}

func (s *State) addLocked(kind SkillList, raw string) (bool, error) {
	list, err := s.list(kind)
	if err != nil {
		return false, err
	}
	skill := strings.TrimSpace(raw)
	if skill == "" {
		return false, nil
	}
	*list = append(*list, skill)
	s.pending[kind] = ""
	return true, nil
}

// RemoveSkill drops the entry at index. Out of range indexes are ignored.
func (s *State) RemoveSkill(kind SkillList, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	list, err := s.list(kind)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(*list) {
		return false, nil
	}
	*list = append((*list)[:index:index], (*list)[index+1:]...)
	return true, nil
}

// Save closes the state and returns the draft as it stood.
func (s *State) Save() (Outcome, error) {
	return s.finish(SavedMessage)
}

// Discard closes the state. Fields are left as edited, not restored.
func (s *State) Discard() (Outcome, error) {
	return s.finish(DiscardedMessage)
}

func (s *State) finish(msg string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Outcome{}, ErrClosed
	}
	s.closed = true
	return Outcome{Message: msg, Snapshot: s.draft.Clone()}, nil
}

func (s *State) list(kind SkillList) (*[]string, error) {
	switch kind {
	case Offered:
		return &s.draft.SkillsOffered, nil
	case Wanted:
		return &s.draft.SkillsWanted, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSkillList, kind)
}
