package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Availability string

const (
	AvailabilityWeekdays Availability = "weekdays"
	AvailabilityWeekends Availability = "weekends"
	AvailabilityEvenings Availability = "evenings"
	AvailabilityFlexible Availability = "flexible"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityWeekdays, AvailabilityWeekends, AvailabilityEvenings, AvailabilityFlexible:
		return true
	}
	return false
}

type Visibility string

// Values are capitalised the way the editor's select sends them.
const (
	VisibilityPublic  Visibility = "Public"
	VisibilityPrivate Visibility = "Private"
	VisibilityFriends Visibility = "Friends"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriends:
		return true
	}
	return false
}

// ProfileDraft is the editable copy of a profile held by an editor session.
type ProfileDraft struct {
	Name              string       `bson:"name" json:"name"`
	Title             string       `bson:"title" json:"title"`
	Location          string       `bson:"location" json:"location"`
	Email             string       `bson:"email" json:"email"`
	Phone             string       `bson:"phone" json:"phone"`
	Bio               string       `bson:"bio" json:"bio"`
	Avatar            string       `bson:"avatar,omitempty" json:"avatar,omitempty"`
	SkillsOffered     []string     `bson:"skillsOffered" json:"skillsOffered"`
	SkillsWanted      []string     `bson:"skillsWanted" json:"skillsWanted"`
	Availability      Availability `bson:"availability" json:"availability"`
	ProfileVisibility Visibility   `bson:"profileVisibility" json:"profileVisibility"`
}

// Clone returns a deep copy; the skill slices are not shared.
func (d ProfileDraft) Clone() ProfileDraft {
	out := d
	out.SkillsOffered = append([]string{}, d.SkillsOffered...)
	out.SkillsWanted = append([]string{}, d.SkillsWanted...)
	return out
}

// EditSession is the wire view of an open editor.
type EditSession struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Draft   ProfileDraft       `bson:"draft" json:"draft"`
	Pending PendingSkills      `bson:"pending" json:"pending"`
	Opened  int64              `bson:"openedAt" json:"openedAt"`
}

type PendingSkills struct {
	Offered string `bson:"offered" json:"offered"`
	Wanted  string `bson:"wanted" json:"wanted"`
}
