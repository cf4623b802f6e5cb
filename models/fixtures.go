package models

const seedBio = "Passionate designer and developer with 8+ years of experience creating beautiful, user-centered digital experiences."

// SeedDraft returns the profile an editor opens with. Every call returns
// fresh slices.
func SeedDraft() ProfileDraft {
	return ProfileDraft{
		Name:              "Alexandra Chen",
		Title:             "Senior UX/UI Designer & Frontend Developer",
		Location:          "San Francisco, CA",
		Email:             "alexandra.chen@email.com",
		Phone:             "+1 (555) 123-4567",
		Bio:               seedBio,
		SkillsOffered:     []string{"UI/UX Design", "React", "Figma"},
		SkillsWanted:      []string{"Python", "JavaScript", "AutoCAD"},
		Availability:      AvailabilityWeekends,
		ProfileVisibility: VisibilityPublic,
	}
}

func SeedShowcase() ShowcaseProfile {
	return ShowcaseProfile{
		Name:       "Alexandra Chen",
		Title:      "Senior UX/UI Designer & Frontend Developer",
		Location:   "San Francisco, CA",
		Email:      "alexandra.chen@email.com",
		Phone:      "+1 (555) 123-4567",
		JoinDate:   "March 2022",
		Bio:        "Passionate designer and developer with 8+ years of experience creating beautiful, user-centered digital experiences. I specialize in bridging the gap between design and development, ensuring pixel-perfect implementations that delight users.",
		Avatar:     "/placeholder.svg?height=200&width=200",
		CoverImage: "/placeholder.svg?height=300&width=800",
		Stats: Stats{
			Projects:  47,
			Followers: 1234,
			Following: 567,
			Likes:     8901,
		},
		Skills: SkillGroups{
			Design: []SkillLevel{
				{Name: "UI/UX Design", Level: 95},
				{Name: "Figma", Level: 90},
				{Name: "Adobe Creative Suite", Level: 85},
				{Name: "Prototyping", Level: 88},
			},
			Development: []SkillLevel{
				{Name: "React", Level: 92},
				{Name: "TypeScript", Level: 88},
				{Name: "Next.js", Level: 85},
				{Name: "Tailwind CSS", Level: 90},
			},
		},
		Experience: []Experience{
			{
				Company:     "TechCorp Inc.",
				Position:    "Senior UX Designer",
				Duration:    "2022 - Present",
				Description: "Leading design initiatives for enterprise SaaS products, managing a team of 4 designers.",
			},
			{
				Company:     "StartupXYZ",
				Position:    "Product Designer",
				Duration:    "2020 - 2022",
				Description: "Designed and developed the complete user experience for a fintech mobile application.",
			},
			{
				Company:     "Design Studio",
				Position:    "UI Designer",
				Duration:    "2018 - 2020",
				Description: "Created beautiful interfaces for various client projects across different industries.",
			},
		},
		Projects: []Project{
			{
				Title:       "E-commerce Dashboard",
				Description: "Complete redesign of admin dashboard with 40% improvement in user efficiency",
				Image:       "/placeholder.svg?height=200&width=300",
				Tags:        []string{"UI/UX", "React", "Analytics"},
			},
			{
				Title:       "Mobile Banking App",
				Description: "Fintech mobile app serving 100K+ users with seamless transaction experience",
				Image:       "/placeholder.svg?height=200&width=300",
				Tags:        []string{"Mobile", "Fintech", "UX Research"},
			},
			{
				Title:       "Design System",
				Description: "Comprehensive design system adopted across 15+ products in the organization",
				Image:       "/placeholder.svg?height=200&width=300",
				Tags:        []string{"Design System", "Components", "Documentation"},
			},
		},
		Achievements: []Achievement{
			{Title: "Design Excellence Award", Year: "2023", Organization: "TechCorp"},
			{Title: "Best Mobile App Design", Year: "2022", Organization: "Design Awards"},
			{Title: "Innovation in UX", Year: "2021", Organization: "UX Conference"},
		},
		SocialLinks: SocialLinks{
			GitHub:   "https://github.com/alexandra-chen",
			LinkedIn: "https://linkedin.com/in/alexandra-chen",
			Twitter:  "https://twitter.com/alexandra_chen",
			Website:  "https://alexandrachen.design",
		},
	}
}

func SeedFeatures() []Feature {
	return []Feature{
		{Title: "Offer your skills", Description: "List what you can teach and let learners find you."},
		{Title: "Find what you want to learn", Description: "Browse people offering the skills on your wish list."},
		{Title: "Swap and grow", Description: "Trade an hour of what you know for an hour of what you don't."},
	}
}
