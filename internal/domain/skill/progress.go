package skill

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// Thresholds - пороги прогресса, за которые выдаются достижения.
var Thresholds = []int{25, 50, 75, 100}

// PracticeProgressStep - прирост прогресса за одну практику.
const PracticeProgressStep = 5

// Milestone - достигнутый порог.
type Milestone struct {
	Threshold  int       `json:"threshold"`
	AchievedAt time.Time `json:"achieved_at"`
}

// Progress - прогресс пользователя по одному навыку.
type Progress struct {
	Username         shared.Username `json:"user_id"`
	Skill            string          `json:"skill_name"`
	Progress         shared.Percent  `json:"progress"`
	ExperiencePoints int             `json:"experience_points"`
	LastUpdated      time.Time       `json:"last_updated"`
	Milestones       []Milestone     `json:"milestones"`
}

// NormalizeName убирает лишние пробелы в названии навыка.
func NormalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", shared.ErrEmptySkillName
	}
	return name, nil
}

// Key - ключ навыка без учёта регистра.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NewProgress создаёт пустой прогресс: 0%, 0 XP, без порогов.
func NewProgress(username shared.Username, skillName string, now time.Time) *Progress {
	return &Progress{
		Username:    username,
		Skill:       skillName,
		LastUpdated: now,
		Milestones:  []Milestone{},
	}
}

// Apply выставляет прогресс (с ограничением в [0, 100]), добавляет опыт
// и возвращает впервые пересечённые пороги по возрастанию.
// Отрицательный прирост опыта считается нулевым: накопитель не убывает.
func (p *Progress) Apply(progress, xpDelta int, now time.Time) []int {
	if xpDelta < 0 {
		xpDelta = 0
	}

	p.Progress = shared.ClampPercent(progress)
	p.ExperiencePoints += xpDelta
	p.LastUpdated = now

	var crossed []int
	for _, t := range Thresholds {
		if p.Progress.Int() >= t && !p.HasMilestone(t) {
			p.Milestones = append(p.Milestones, Milestone{Threshold: t, AchievedAt: now})
			crossed = append(crossed, t)
		}
	}
	return crossed
}

// Practice прибавляет PracticeProgressStep к прогрессу и минуты к опыту.
func (p *Progress) Practice(minutes int, now time.Time) []int {
	return p.Apply(p.Progress.Add(PracticeProgressStep).Int(), minutes, now)
}

// HasMilestone проверяет, записан ли порог.
func (p *Progress) HasMilestone(threshold int) bool {
	for _, m := range p.Milestones {
		if m.Threshold == threshold {
			return true
		}
	}
	return false
}

// MilestoneThresholds возвращает записанные пороги по возрастанию.
func (p *Progress) MilestoneThresholds() []int {
	out := make([]int, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		out = append(out, m.Threshold)
	}
	sort.Ints(out)
	return out
}

// Clone возвращает независимую копию.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	c := *p
	c.Milestones = make([]Milestone, len(p.Milestones))
	copy(c.Milestones, p.Milestones)
	return &c
}

// MilestoneAchievementName - имя достижения за порог.
func MilestoneAchievementName(skillName string, threshold int) string {
	return fmt.Sprintf("%s - %d%% Complete", skillName, threshold)
}

// Top возвращает навык с наибольшим прогрессом.
// При равенстве побеждает навык, встреченный первым.
func Top(items []*Progress) (*Progress, bool) {
	var best *Progress
	for _, p := range items {
		if best == nil || p.Progress > best.Progress {
			best = p
		}
	}
	return best, best != nil
}
