package http

import (
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// Request bodies. Structural checks live in the validate tags; business
// rules (duration bounds, username format) stay in the domain so both
// layers report the same messages.

type registerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Skills               *[]string `json:"skills" validate:"omitempty,max=50"`
	ExperienceLevel      *string   `json:"experience_level"`
	Bio                  *string   `json:"bio" validate:"omitempty,max=2000"`
	LearningGoals        *[]string `json:"learning_goals" validate:"omitempty,max=20"`
	Interests            *[]string `json:"interests" validate:"omitempty,max=50"`
	TimeCommitment       *string   `json:"time_commitment"`
	LearningStyle        *string   `json:"learning_style"`
	DifficultyPreference *string   `json:"difficulty_preference"`
}

func (p profileRequest) patch() account.ProfilePatch {
	return account.ProfilePatch{
		Skills:               p.Skills,
		ExperienceLevel:      p.ExperienceLevel,
		Bio:                  p.Bio,
		LearningGoals:        p.LearningGoals,
		Interests:            p.Interests,
		TimeCommitment:       p.TimeCommitment,
		LearningStyle:        p.LearningStyle,
		DifficultyPreference: p.DifficultyPreference,
	}
}

type activityRequest struct {
	ActivityType    string `json:"activity_type" validate:"omitempty,max=32"`
	DurationMinutes *int   `json:"duration_minutes" validate:"required"`
	Details         string `json:"details" validate:"max=1000"`
}

type skillRequest struct {
	Progress         *int `json:"progress" validate:"required"`
	ExperiencePoints int  `json:"experience_points"`
}

type practiceRequest struct {
	Minutes int `json:"minutes" validate:"required"`
}

type awardRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Type string `json:"type" validate:"omitempty,max=32"`
}

type goalRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	TargetDate string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// targetDate is nil when no date was sent. The tag has already checked the format.
func (g goalRequest) targetDate(loc *time.Location) *time.Time {
	if g.TargetDate == "" {
		return nil
	}
	t, err := timeutil.ParseDate(g.TargetDate, loc)
	if err != nil {
		return nil
	}
	return &t
}

type pathRequest struct {
	Goal              string `json:"goal" validate:"required,max=200"`
	AdditionalSkills  string `json:"additional_skills" validate:"max=2000"`
	Preferences       string `json:"preferences" validate:"max=2000"`
	ResumeContent     string `json:"resume_content" validate:"max=50000"`
	UsePreviousSkills *bool  `json:"use_previous_skills"`
	Template          string `json:"template" validate:"omitempty,oneof=career basic"`
}

// request maps the body to a generation request. Onboarding skills are
// used unless the client sends use_previous_skills=false.
func (p pathRequest) request() generation.PathRequest {
	usePrevious := true
	if p.UsePreviousSkills != nil {
		usePrevious = *p.UsePreviousSkills
	}
	return generation.PathRequest{
		Goal:              p.Goal,
		AdditionalSkills:  p.AdditionalSkills,
		Preferences:       p.Preferences,
		ResumeContent:     p.ResumeContent,
		UsePreviousSkills: usePrevious,
	}
}

type resumeRequest struct {
	FullName         string `json:"full_name" validate:"max=120"`
	Goal             string `json:"goal" validate:"required,max=200"`
	AdditionalSkills string `json:"additional_skills" validate:"max=2000"`
	Style            string `json:"style" validate:"max=64"`
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}
