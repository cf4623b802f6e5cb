package models

// ShowcaseProfile is the read-only record rendered by the profile viewer.
type ShowcaseProfile struct {
	Name         string        `bson:"name" json:"name"`
	Title        string        `bson:"title" json:"title"`
	Location     string        `bson:"location" json:"location"`
	Email        string        `bson:"email" json:"email"`
	Phone        string        `bson:"phone" json:"phone"`
	JoinDate     string        `bson:"joinDate" json:"joinDate"`
	Bio          string        `bson:"bio" json:"bio"`
	Avatar       string        `bson:"avatar" json:"avatar"`
	CoverImage   string        `bson:"coverImage" json:"coverImage"`
	Stats        Stats         `bson:"stats" json:"stats"`
	Skills       SkillGroups   `bson:"skills" json:"skills"`
	Experience   []Experience  `bson:"experience" json:"experience"`
	Projects     []Project     `bson:"projects" json:"projects"`
	Achievements []Achievement `bson:"achievements" json:"achievements"`
	SocialLinks  SocialLinks   `bson:"socialLinks" json:"socialLinks"`
}

type Stats struct {
	Projects  int `bson:"projects" json:"projects"`
	Followers int `bson:"followers" json:"followers"`
	Following int `bson:"following" json:"following"`
	Likes     int `bson:"likes" json:"likes"`
}

type SkillLevel struct {
	Name  string `bson:"name" json:"name"`
	Level int    `bson:"level" json:"level"` // 0-100
}

type SkillGroups struct {
	Design      []SkillLevel `bson:"design" json:"design"`
	Development []SkillLevel `bson:"development" json:"development"`
}

type Experience struct {
	Company     string `bson:"company" json:"company"`
	Position    string `bson:"position" json:"position"`
	Duration    string `bson:"duration" json:"duration"`
	Description string `bson:"description" json:"description"`
}

type Project struct {
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description" json:"description"`
	Image       string   `bson:"image" json:"image"`
	Tags        []string `bson:"tags" json:"tags"`
}

type Achievement struct {
	Title        string `bson:"title" json:"title"`
	Year         string `bson:"year" json:"year"`
	Organization string `bson:"organization" json:"organization"`
}

type SocialLinks struct {
	GitHub   string `bson:"github" json:"github"`
	LinkedIn string `bson:"linkedin" json:"linkedin"`
	Twitter  string `bson:"twitter" json:"twitter"`
	Website  string `bson:"website" json:"website"`
}

// Feature is one slide of the landing page carousel.
type Feature struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
}
