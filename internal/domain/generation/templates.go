package generation

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("generation").
		Funcs(template.FuncMap{
			"join": strings.Join,
			"first3": func(in []string) []string { return firstN(in, 3) },
		}).
		ParseFS(templateFS, "templates/*.md.tmpl"),
)

// TemplateKind selects a deterministic path generator.
type TemplateKind string

const (
	TemplateCareer TemplateKind = "career"
	TemplateBasic  TemplateKind = "basic"
)

// ParseTemplateKind returns the kind; anything other than "basic" is career.
func ParseTemplateKind(s string) TemplateKind {
	if strings.EqualFold(strings.TrimSpace(s), string(TemplateBasic)) {
		return TemplateBasic
	}
	return TemplateCareer
}

type basicPathData struct {
	Goal            string
	Intro           string
	ExperienceLevel account.ExperienceLevel
	TimeCommitment  account.TimeCommitment
	Resources       ResourceSet
}

// RenderBasicPath renders the generic 12-week roadmap.
func RenderBasicPath(p account.Profile, req PathRequest) (string, error) {
	intro := "Starting fresh with foundational concepts."
	if req.UsePreviousSkills && len(p.Skills) > 0 {
		intro = "Since you have experience with " + strings.Join(firstN(p.Skills, 3), ", ") +
			", we'll build on your existing knowledge."
	}

	return render("basic_path.md.tmpl", basicPathData{
		Goal:            req.Goal,
		Intro:           intro,
		ExperienceLevel: p.ExperienceLevel,
		TimeCommitment:  p.TimeCommitment,
		Resources:       OpenSourceResources(req.Goal),
	})
}

type careerPathData struct {
	Goal            string
	Intro           string
	CurrentSkills   string
	ExperienceLevel account.ExperienceLevel
	TimeCommitment  account.TimeCommitment
	Field           FieldResources
	FieldLower      string
}

// RenderCareerPath renders the field-aware career readiness roadmap.
func RenderCareerPath(p account.Profile, req PathRequest) (string, error) {
	data := careerPathData{
		Goal:            req.Goal,
		Intro:           "Starting fresh with foundational concepts - no prior experience assumed",
		CurrentSkills:   "Current Skills: None (Starting from basics)",
		ExperienceLevel: p.ExperienceLevel,
		TimeCommitment:  p.TimeCommitment,
		Field:           ResourcesForGoal(req.Goal),
	}
	data.FieldLower = strings.ToLower(string(data.Field.Field))
	if req.UsePreviousSkills && len(p.Skills) > 0 {
		data.Intro = "Building on your existing skills: " + strings.Join(firstN(p.Skills, 3), ", ")
		data.CurrentSkills = "Current Skills: " + strings.Join(p.Skills, ", ")
	}
	return render("career_path.md.tmpl", data)
}

// RenderPathTemplate dispatches on kind.
func RenderPathTemplate(kind TemplateKind, p account.Profile, req PathRequest) (string, error) {
	if kind == TemplateBasic {
		return RenderBasicPath(p, req)
	}
	return RenderCareerPath(p, req)
}

type resumeData struct {
	Name            string
	Email           string
	Goal            string
	Bio             string
	Skills          []string
	LearningGoals   []string
	Interests       []string
	ExperienceLevel account.ExperienceLevel
	TimeCommitment  account.TimeCommitment
	PathGoal        string
	Style           StyleDescriptor
}

// RenderTemplateResume renders a resume from profile data alone.
func RenderTemplateResume(in ResumeInput) (string, error) {
	data := resumeData{
		Name:            in.Name,
		Email:           in.Email,
		Goal:            in.Goal,
		Bio:             in.Profile.Bio,
		Skills:          in.Skills(),
		LearningGoals:   in.Profile.LearningGoals,
		Interests:       in.Profile.Interests,
		ExperienceLevel: in.Profile.ExperienceLevel,
		TimeCommitment:  in.Profile.TimeCommitment,
		Style:           in.Style.Describe(),
	}
	if in.LatestPath != nil {
		data.PathGoal = in.LatestPath.Goal
	}
	return render("resume.md.tmpl", data)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func firstN(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
