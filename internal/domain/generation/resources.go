package generation

import "strings"

// Field is the career area inferred from a goal.
type Field string

const (
	FieldTechnology Field = "Technology"
	FieldBusiness   Field = "Business"
	FieldGeneral    Field = "General"
)

// FieldResources lists where to look for jobs and learning in a field.
type FieldResources struct {
	Field             Field    `json:"field"`
	JobSites          []string `json:"job_sites"`
	LearningPlatforms []string `json:"learning_platforms"`
	Communities       []string `json:"communities"`
	Certifications    []string `json:"certifications"`
	Portfolios        []string `json:"portfolios"`
}

var (
	technologyKeywords = []string{
		"software", "developer", "programmer", "engineer", "coding", "data science",
		"ai", "machine learning", "web", "mobile", "cybersecurity", "devops",
	}
	businessKeywords = []string{
		"business", "management", "marketing", "sales", "consultant", "analyst",
		"manager", "director", "ceo", "entrepreneur",
	}
)

// ResourcesForGoal classifies the goal by substring match and returns its field resources.
// Technology keywords are checked before business ones.
func ResourcesForGoal(goal string) FieldResources {
	g := strings.ToLower(goal)

	switch {
	case containsAny(g, technologyKeywords):
		return FieldResources{
			Field:             FieldTechnology,
			JobSites:          []string{"LinkedIn", "Indeed", "Glassdoor", "AngelList", "Stack Overflow Jobs"},
			LearningPlatforms: []string{"Coursera", "edX", "freeCodeCamp", "Codecademy", "Udemy", "Pluralsight"},
			Communities:       []string{"GitHub", "Stack Overflow", "Reddit r/programming", "Dev.to", "Hacker News"},
			Certifications:    []string{"AWS", "Google Cloud", "Microsoft Azure", "CompTIA", "Cisco"},
			Portfolios:        []string{"GitHub", "GitLab", "Bitbucket", "CodePen", "Replit"},
		}
	case containsAny(g, businessKeywords):
		return FieldResources{
			Field:             FieldBusiness,
			JobSites:          []string{"LinkedIn", "Indeed", "Glassdoor", "AngelList", "Built In"},
			LearningPlatforms: []string{"Coursera", "edX", "Harvard Business School Online", "Kellogg School", "Wharton Online"},
			Communities:       []string{"LinkedIn Groups", "Reddit r/business", "Harvard Business Review", "Forbes", "Inc.com"},
			Certifications:    []string{"PMP", "Six Sigma", "Google Analytics", "HubSpot", "Salesforce"},
			Portfolios:        []string{"LinkedIn", "Personal Website", "Medium", "Behance", "Dribbble"},
		}
	default:
		return FieldResources{
			Field:             FieldGeneral,
			JobSites:          []string{"LinkedIn", "Indeed", "Glassdoor", "Monster", "CareerBuilder"},
			LearningPlatforms: []string{"Coursera", "edX", "LinkedIn Learning", "Udemy", "Skillshare"},
			Communities:       []string{"LinkedIn", "Professional Associations", "Industry Forums", "Networking Groups"},
			Certifications:    []string{"Industry Certifications", "Professional Development", "Skill Assessments", "Continuing Education"},
			Portfolios:        []string{"LinkedIn", "Personal Website", "Professional Profiles", "Work Samples"},
		}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Link is a named URL.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResourceSet groups curated open-source resources.
type ResourceSet struct {
	Courses     []Link `json:"courses"`
	Practice    []Link `json:"practice"`
	Communities []Link `json:"communities"`
}

type topicResources struct {
	keyword string
	set     ResourceSet
}

// Checked in order; the first keyword contained in the topic wins.
var openSourceResources = []topicResources{
	{
		keyword: "programming",
		set: ResourceSet{
			Courses: []Link{
				{"freeCodeCamp", "https://www.freecodecamp.org/"},
				{"Codecademy", "https://www.codecademy.com/"},
				{"Khan Academy", "https://www.khanacademy.org/"},
			},
			Practice: []Link{
				{"LeetCode", "https://leetcode.com/"},
				{"HackerRank", "https://www.hackerrank.com/"},
			},
			Communities: []Link{
				{"Stack Overflow", "https://stackoverflow.com/"},
				{"Reddit r/programming", "https://www.reddit.com/r/programming/"},
			},
		},
	},
	{
		keyword: "data science",
		set: ResourceSet{
			Courses: []Link{
				{"Coursera - Data Science Specialization", "https://www.coursera.org/specializations/jhu-data-science"},
				{"Kaggle Learn", "https://www.kaggle.com/learn"},
				{"edX - MIT Intro to CS", "https://www.edx.org/course/introduction-computer-science-mitx-6-00-1x-10"},
			},
			Practice: []Link{
				{"Kaggle Competitions", "https://www.kaggle.com/competitions"},
				{"Google Colab", "https://colab.research.google.com/"},
			},
			Communities: []Link{
				{"Kaggle Community", "https://www.kaggle.com/discussion"},
				{"Towards Data Science", "https://towardsdatascience.com/"},
			},
		},
	},
	{
		keyword: "web development",
		set: ResourceSet{
			Courses: []Link{
				{"Mozilla Developer Network (MDN)", "https://developer.mozilla.org/"},
				{"W3Schools", "https://www.w3schools.com/"},
				{"React Official Docs", "https://react.dev/"},
			},
			Practice: []Link{
				{"CodePen", "https://codepen.io/"},
				{"JSFiddle", "https://jsfiddle.net/"},
			},
			Communities: []Link{
				{"CSS-Tricks", "https://css-tricks.com/"},
				{"Smashing Magazine", "https://www.smashingmagazine.com/"},
			},
		},
	},
}

var defaultResources = ResourceSet{
	Courses: []Link{
		{"Coursera", "https://www.coursera.org/"},
		{"edX", "https://www.edx.org/"},
		{"Khan Academy", "https://www.khanacademy.org/"},
	},
	Practice: []Link{
		{"GitHub", "https://github.com/"},
		{"Stack Overflow", "https://stackoverflow.com/"},
	},
	Communities: []Link{
		{"Reddit", "https://www.reddit.com/"},
		{"Discord Learning Communities", "https://discord.com/"},
	},
}

// OpenSourceResources returns curated resources for a topic, or a general set.
func OpenSourceResources(topic string) ResourceSet {
	t := strings.ToLower(topic)
	for _, r := range openSourceResources {
		if strings.Contains(t, r.keyword) {
			return r.set
		}
	}
	return defaultResources
}
