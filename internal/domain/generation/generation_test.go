package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
)

func profileWithSkills(skills ...string) account.Profile {
	p := account.DefaultProfile()
	p.Skills = skills
	return p
}

func TestResourcesForGoal(t *testing.T) {
	tests := []struct {
		goal string
		want Field
	}{
		{"Senior Software Developer", FieldTechnology},
		{"Machine Learning researcher", FieldTechnology},
		{"Marketing Manager", FieldBusiness},
		{"Start my own company as entrepreneur", FieldBusiness},
		{"Chef", FieldGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourcesForGoal(tt.goal).Field)
		})
	}
}

func TestOpenSourceResources(t *testing.T) {
	assert.Equal(t, "Kaggle Learn", OpenSourceResources("Intro to Data Science").Courses[1].Name)
	assert.Equal(t, "CodePen", OpenSourceResources("web development bootcamp").Practice[0].Name)
	assert.Equal(t, "Coursera", OpenSourceResources("pottery").Courses[0].Name)
}

func TestParseResumeStyle(t *testing.T) {
	assert.Equal(t, StyleTechInnovative, ParseResumeStyle("Tech Innovative"))
	assert.Equal(t, StyleCreativeColorful, ParseResumeStyle("creative_colorful"))
	assert.Equal(t, StyleModernMinimal, ParseResumeStyle("brutalist"))
	assert.Equal(t, "Professional blues and grays", StyleProfessionalElegant.Describe().ColorScheme)
}

func TestRenderCareerPath(t *testing.T) {
	p := profileWithSkills("Python", "SQL", "Excel", "Tableau")
	out, err := RenderCareerPath(p, PathRequest{Goal: "Data Science Engineer", UsePreviousSkills: true})
	require.NoError(t, err)

	assert.Contains(t, out, "# 🎯 Career Readiness Path: Data Science Engineer")
	assert.Contains(t, out, "Building on your existing skills: Python, SQL, Excel")
	assert.Contains(t, out, "Current Skills: Python, SQL, Excel, Tableau")
	assert.Contains(t, out, "Identify technology skills")
	assert.Contains(t, out, "*Job Sites*: LinkedIn, Indeed, Glassdoor")
}

func TestRenderCareerPath_FreshStart(t *testing.T) {
	p := profileWithSkills("Python")
	out, err := RenderCareerPath(p, PathRequest{Goal: "Chef", UsePreviousSkills: false})
	require.NoError(t, err)

	assert.Contains(t, out, "Starting fresh with foundational concepts - no prior experience assumed")
	assert.Contains(t, out, "Current Skills: None (Starting from basics)")
	assert.Contains(t, out, "Identify general skills")
}

func TestRenderBasicPath(t *testing.T) {
	out, err := RenderPathTemplate(ParseTemplateKind("basic"), profileWithSkills("Go"), PathRequest{
		Goal:              "Web Development",
		UsePreviousSkills: true,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "# 🎯 Learning Path: Web Development")
	assert.Contains(t, out, "Since you have experience with Go, we'll build on your existing knowledge.")
	assert.Contains(t, out, "- *Mozilla Developer Network (MDN)*: https://developer.mozilla.org/")
}

func TestRenderTemplateResume(t *testing.T) {
	p := profileWithSkills("Go")
	p.Interests = []string{"Open source", "Chess"}
	out, err := RenderTemplateResume(ResumeInput{
		Name:             "alice",
		Email:            "a@x.com",
		Goal:             "Backend Engineer",
		AdditionalSkills: "Docker, go",
		Profile:          p,
		LatestPath:       &account.PathRecord{Goal: "Cloud Engineer"},
		Style:            StyleTechInnovative,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "# ✨ alice ✨")
	assert.Contains(t, out, "- Go\n- Docker")
	assert.Contains(t, out, "Following a structured learning path: Cloud Engineer")
	assert.Contains(t, out, "Open source · Chess")
	assert.Contains(t, out, "Dark themes with neon accents")
}

func TestBuildPathPrompt(t *testing.T) {
	p := profileWithSkills("Python")
	prompt := BuildPathPrompt(p, PathRequest{Goal: "Data Scientist", Preferences: "videos", UsePreviousSkills: true})

	assert.Contains(t, prompt, "You are an expert learning path generator.")
	assert.Contains(t, prompt, "- Current Skills: Python")
	assert.Contains(t, prompt, "- Primary Goal: Data Scientist")
	assert.Contains(t, prompt, "- Preferences: videos")
	assert.Contains(t, prompt, "Leverage the user's existing skills")

	fresh := BuildPathPrompt(p, PathRequest{Goal: "Data Scientist"})
	assert.Contains(t, fresh, "Assume the user is starting fresh")
}

func TestBuildAssistantPrompt(t *testing.T) {
	prompt := BuildAssistantPrompt(profileWithSkills("Go", "SQL"), "  How do I get a backend job? ")
	assert.Contains(t, prompt, "- Skills: Go, SQL")
	assert.Contains(t, prompt, "User Question: How do I get a backend job?")
}
