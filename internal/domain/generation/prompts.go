package generation

import (
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
)

// AssistantFallback is returned by the assistant when no provider answer is available.
const AssistantFallback = "I'd be happy to help! However, I need a Gemini API key to provide personalized AI assistance. " +
	"Please add your API key in the Profile section for enhanced features."

const pathSystemPrompt = "You are an expert learning path generator. " +
	"Create a comprehensive, personalized learning path based on the user's profile and request. " +
	"Focus on actionable steps, open-source resources with direct links, and clear milestones. " +
	"Make it encouraging and inspiring."

const (
	strategyLeverage = "Leverage the user's existing skills and experience to accelerate the path, " +
		"suggest bridge modules to transition into the goal area, and skip fundamentals they likely know."
	strategyFresh = "Assume the user is starting fresh or wants a new direction. Start from foundations " +
		"with a clean, beginner-friendly path, with optional notes where prior experience could help but do not rely on it."
)

// PathRequest is the user's input for a learning path.
type PathRequest struct {
	Goal              string
	AdditionalSkills  string
	Preferences       string
	ResumeContent     string
	UsePreviousSkills bool
}

// BuildPathPrompt composes the provider prompt for a learning path.
func BuildPathPrompt(p account.Profile, req PathRequest) string {
	strategy := strategyFresh
	if req.UsePreviousSkills {
		strategy = strategyLeverage
	}

	var b strings.Builder
	b.WriteString(pathSystemPrompt)
	b.WriteString("\n\n")
	writeProfile(&b, p)
	fmt.Fprintf(&b, `
LEARNING REQUEST:
- Primary Goal: %s
- Additional Skills: %s
- Preferences: %s
- Resume/Background: %s
- Use Previous Skills: %t

Please generate a detailed learning path that includes:

1. OVERVIEW & ASSESSMENT: current skill assessment relative to goal, goal breakdown, estimated timeline, difficulty progression.
2. LEARNING ROADMAP with estimated time per step:
   - Phase 1: Foundation
   - Phase 2: Intermediate
   - Phase 3: Advanced
   - Phase 4: Mastery
3. OPEN SOURCE LEARNING RESOURCES with direct links, at least 3 per category: free courses, documentation and tutorials, practice platforms, community forums.
4. PROJECTS & PRACTICAL WORK: mini-projects per phase, portfolio-worthy ideas, collaborative projects.
5. CHECKPOINTS & MILESTONES: weekly and monthly tracking, self-assessment, motivation strategies.
6. COMMUNITY & SUPPORT: online communities, finding mentors, study groups.

Format the response with clear headings, bullet points, and actionable steps.
Make it motivating and personalized to the user's profile.

SPECIAL INSTRUCTION ABOUT PRIOR SKILLS:
%s
`, req.Goal, req.AdditionalSkills, req.Preferences, req.ResumeContent, req.UsePreviousSkills, strategy)

	return b.String()
}

func writeProfile(b *strings.Builder, p account.Profile) {
	fmt.Fprintf(b, `USER PROFILE:
- Experience Level: %s
- Current Skills: %s
- Learning Goals: %s
- Interests: %s
- Time Commitment: %s
- Learning Style: %s
- Difficulty Preference: %s
`,
		p.ExperienceLevel,
		strings.Join(p.Skills, ", "),
		strings.Join(p.LearningGoals, ", "),
		strings.Join(p.Interests, ", "),
		p.TimeCommitment,
		p.LearningStyle,
		p.DifficultyPreference,
	)
}

// ResumeInput carries everything a resume prompt or template needs.
type ResumeInput struct {
	Name             string
	Email            string
	Goal             string
	AdditionalSkills string
	Profile          account.Profile
	LatestPath       *account.PathRecord
	Style            ResumeStyle
}

// Skills merges profile skills with comma-separated additional skills.
func (in ResumeInput) Skills() []string {
	all := append([]string{}, in.Profile.Skills...)
	all = append(all, strings.Split(in.AdditionalSkills, ",")...)
	return account.NormalizeSet(all)
}

// BuildResumePrompt composes the provider prompt for a resume.
func BuildResumePrompt(in ResumeInput) string {
	d := in.Style.Describe()
	skills := "General professional skills"
	if s := in.Skills(); len(s) > 0 {
		skills = strings.Join(s, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a CREATIVE, VISUAL and CONCISE professional resume for %s. "+
		"Make it SHORT and IMPACTFUL, not an essay.\n\n", in.Name)
	fmt.Fprintf(&b, `PERSONAL INFORMATION:
- Name: %s
- Email: %s
- Skills: %s
- Experience Level: %s
- Bio: %s
- Career Goal: %s
- Learning Goals: %s
- Interests: %s
- Time Commitment: %s
- Learning Style: %s
`,
		in.Name, in.Email, skills, in.Profile.ExperienceLevel, in.Profile.Bio, in.Goal,
		strings.Join(in.Profile.LearningGoals, ", "),
		strings.Join(in.Profile.Interests, ", "),
		in.Profile.TimeCommitment, in.Profile.LearningStyle,
	)
	if in.LatestPath != nil {
		fmt.Fprintf(&b, "\nLearning Path: %s\n", in.LatestPath.Goal)
	}
	fmt.Fprintf(&b, `
DESIGN DIRECTION (%s):
- Header: %s
- Colors: %s
- Layout: %s
- Typography: %s

REQUIREMENTS:
- Maximum 1 page, bullet points instead of paragraphs
- Action verbs, numbers and metrics, scannable in 30 seconds
- Creative section headers with emojis

STRUCTURE:
1. HEADER: name, title, contact
2. PROFESSIONAL SUMMARY: 2-3 sentences
3. CORE SKILLS: 3-4 categories
4. EXPERIENCE: 2-3 roles
5. PROJECTS: 2-3 projects
6. EDUCATION: degrees and certifications
7. ACHIEVEMENTS

Respond in Markdown.
`, d.Style, d.HeaderStyle, d.ColorScheme, d.Layout, d.Typography)

	return b.String()
}

// BuildAssistantPrompt composes the career assistant prompt.
func BuildAssistantPrompt(p account.Profile, question string) string {
	return fmt.Sprintf(`User Profile:
- Skills: %s
- Experience Level: %s
- Learning Goals: %s
- Time Commitment: %s

User Question: %s

Please provide helpful, personalized advice about their career development, learning path, or skill development. Be encouraging and specific to their profile.
`,
		strings.Join(p.Skills, ", "),
		p.ExperienceLevel,
		strings.Join(p.LearningGoals, ", "),
		p.TimeCommitment,
		strings.TrimSpace(question),
	)
}
