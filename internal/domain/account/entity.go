// Package account содержит доменную модель учётной записи пользователя:
// учётные данные, профиль обучения и сгенерированные учебные траектории.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// MinPasswordLength - минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// Все перечисления закрыты: неизвестное значение сводится к значению по умолчанию.
// ══════════════════════════════════════════════════════════════════════════════

// ExperienceLevel - уровень опыта пользователя.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
	ExperienceExpert       ExperienceLevel = "Expert"
)

// ExperienceLevels перечисляет допустимые значения в порядке отображения.
var ExperienceLevels = []ExperienceLevel{
	ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert,
}

// ParseExperienceLevel возвращает уровень или Beginner для неизвестного значения.
func ParseExperienceLevel(s string) ExperienceLevel {
	for _, v := range ExperienceLevels {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return ExperienceBeginner
}

// TimeCommitment - сколько часов в неделю пользователь готов учиться.
type TimeCommitment string

const (
	Commitment1to5   TimeCommitment = "1-5 hours"
	Commitment6to10  TimeCommitment = "6-10 hours"
	Commitment11to20 TimeCommitment = "11-20 hours"
	Commitment20Plus TimeCommitment = "20+ hours"
)

// TimeCommitments перечисляет допустимые значения.
var TimeCommitments = []TimeCommitment{
	Commitment1to5, Commitment6to10, Commitment11to20, Commitment20Plus,
}

// ParseTimeCommitment возвращает значение или "1-5 hours" для неизвестного.
func ParseTimeCommitment(s string) TimeCommitment {
	for _, v := range TimeCommitments {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return Commitment1to5
}

// LearningStyle - предпочитаемый стиль обучения.
type LearningStyle string

const (
	StyleVisual         LearningStyle = "Visual"
	StyleReadingWriting LearningStyle = "Reading/Writing"
	StyleHandsOn        LearningStyle = "Hands-on"
	StyleAuditory       LearningStyle = "Auditory"
	StyleMixed          LearningStyle = "Mixed"
)

// LearningStyles перечисляет допустимые значения.
var LearningStyles = []LearningStyle{
	StyleVisual, StyleReadingWriting, StyleHandsOn, StyleAuditory, StyleMixed,
}

// ParseLearningStyle возвращает стиль или Visual для неизвестного значения.
func ParseLearningStyle(s string) LearningStyle {
	for _, v := range LearningStyles {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return StyleVisual
}

// DifficultyPreference - предпочитаемая сложность материала.
type DifficultyPreference string

const (
	DifficultyBeginnerFriendly DifficultyPreference = "Beginner-friendly"
	DifficultyChallenging      DifficultyPreference = "Challenging"
	DifficultyMixed            DifficultyPreference = "Mixed"
)

// DifficultyPreferences перечисляет допустимые значения.
var DifficultyPreferences = []DifficultyPreference{
	DifficultyBeginnerFriendly, DifficultyChallenging, DifficultyMixed,
}

// ParseDifficultyPreference возвращает значение или Beginner-friendly для неизвестного.
func ParseDifficultyPreference(s string) DifficultyPreference {
	for _, v := range DifficultyPreferences {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return DifficultyBeginnerFriendly
}

// PathStatus - статус учебной траектории.
type PathStatus string

const (
	PathActive    PathStatus = "Active"
	PathCompleted PathStatus = "Completed"
	PathArchived  PathStatus = "Archived"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - анкета пользователя, заполняемая при онбординге.
type Profile struct {
	Skills               []string             `json:"skills"`
	ExperienceLevel      ExperienceLevel      `json:"experience_level"`
	Bio                  string               `json:"bio"`
	LearningGoals        []string             `json:"learning_goals"`
	Interests            []string             `json:"interests"`
	TimeCommitment       TimeCommitment       `json:"time_commitment"`
	LearningStyle        LearningStyle        `json:"learning_style"`
	DifficultyPreference DifficultyPreference `json:"difficulty_preference"`
	OnboardingCompleted  bool                 `json:"onboarding_completed"`
}

// DefaultProfile возвращает профиль нового пользователя.
func DefaultProfile() Profile {
	return Profile{
		Skills:               []string{},
		ExperienceLevel:      ExperienceBeginner,
		Bio:                  "",
		LearningGoals:        []string{},
		Interests:            []string{},
		TimeCommitment:       Commitment1to5,
		LearningStyle:        StyleVisual,
		DifficultyPreference: DifficultyBeginnerFriendly,
		OnboardingCompleted:  false,
	}
}

// ProfilePatch - частичное обновление профиля. nil означает "не менять".
type ProfilePatch struct {
	Skills               *[]string
	ExperienceLevel      *string
	Bio                  *string
	LearningGoals        *[]string
	Interests            *[]string
	TimeCommitment       *string
	LearningStyle        *string
	DifficultyPreference *string
}

// IsEmpty возвращает true, если патч ничего не меняет.
func (p ProfilePatch) IsEmpty() bool {
	return p.Skills == nil && p.ExperienceLevel == nil && p.Bio == nil &&
		p.LearningGoals == nil && p.Interests == nil && p.TimeCommitment == nil &&
		p.LearningStyle == nil && p.DifficultyPreference == nil
}

// Apply сливает патч в профиль и возвращает имена изменённых полей.
// Множества (skills, goals, interests) нормализуются: trim, без пустых строк и дублей.
func (p *Profile) Apply(patch ProfilePatch) []string {
	var changed []string

	if patch.Skills != nil {
		p.Skills = NormalizeSet(*patch.Skills)
		changed = append(changed, "skills")
	}
	if patch.ExperienceLevel != nil {
		p.ExperienceLevel = ParseExperienceLevel(*patch.ExperienceLevel)
		changed = append(changed, "experience_level")
	}
	if patch.Bio != nil {
		p.Bio = strings.TrimSpace(*patch.Bio)
		changed = append(changed, "bio")
	}
	if patch.LearningGoals != nil {
		p.LearningGoals = NormalizeSet(*patch.LearningGoals)
		changed = append(changed, "learning_goals")
	}
	if patch.Interests != nil {
		p.Interests = NormalizeSet(*patch.Interests)
		changed = append(changed, "interests")
	}
	if patch.TimeCommitment != nil {
		p.TimeCommitment = ParseTimeCommitment(*patch.TimeCommitment)
		changed = append(changed, "time_commitment")
	}
	if patch.LearningStyle != nil {
		p.LearningStyle = ParseLearningStyle(*patch.LearningStyle)
		changed = append(changed, "learning_style")
	}
	if patch.DifficultyPreference != nil {
		p.DifficultyPreference = ParseDifficultyPreference(*patch.DifficultyPreference)
		changed = append(changed, "difficulty_preference")
	}

	return changed
}

// NormalizeSet убирает пробелы, пустые значения и дубли (без учёта регистра),
// сохраняя порядок первого вхождения.
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// PATH RECORD
// ══════════════════════════════════════════════════════════════════════════════

// PathRecord - одна сгенерированная учебная траектория. Неизменяема после создания.
type PathRecord struct {
	ID              string     `json:"id"`
	Goal            string     `json:"goal"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
	Status          PathStatus `json:"status"`
	AIGenerated     bool       `json:"ai_generated"`
	CareerReadiness bool       `json:"career_readiness"`
}

// NewPathID строит идентификатор из порядкового номера и времени создания.
func NewPathID(seq int, at time.Time) string {
	return fmt.Sprintf("path_%d_%s", seq, at.Format(timeutil.FormatPathID))
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Account - учётная запись пользователя. Username неизменяем и служит ключом.
type Account struct {
	Username      shared.Username `json:"username"`
	Email         shared.Email    `json:"email"`
	PasswordHash  string          `json:"-"`
	Profile       Profile         `json:"profile"`
	LearningPaths []PathRecord    `json:"learning_paths"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewAccount создаёт учётную запись с профилем по умолчанию.
func NewAccount(username shared.Username, email shared.Email, passwordHash string, now time.Time) (*Account, error) {
	if !username.IsValid() {
		return nil, shared.NewDomainError("account", "Create", shared.ErrInvalidInput, "invalid username")
	}
	if !email.IsValid() {
		return nil, shared.NewDomainError("account", "Create", shared.ErrInvalidInput, "invalid email address")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("account", "Create", shared.ErrEmptyValue, "password hash is required")
	}

	return &Account{
		Username:      username,
		Email:         email,
		PasswordHash:  passwordHash,
		Profile:       DefaultProfile(),
		LearningPaths: []PathRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UpdateProfile сливает патч в профиль. При онбординге выставляет OnboardingCompleted.
func (a *Account) UpdateProfile(patch ProfilePatch, onboarding bool, now time.Time) []string {
	changed := a.Profile.Apply(patch)
	if onboarding && !a.Profile.OnboardingCompleted {
		a.Profile.OnboardingCompleted = true
		changed = append(changed, "onboarding_completed")
	}
	a.UpdatedAt = now
	return changed
}

// AppendPath добавляет новую траекторию в конец списка.
func (a *Account) AppendPath(goal, content string, aiGenerated, careerReadiness bool, now time.Time) PathRecord {
	rec := PathRecord{
		ID:              NewPathID(len(a.LearningPaths), now),
		Goal:            goal,
		Content:         content,
		CreatedAt:       now,
		Status:          PathActive,
		AIGenerated:     aiGenerated,
		CareerReadiness: careerReadiness,
	}
	a.LearningPaths = append(a.LearningPaths, rec)
	a.UpdatedAt = now
	return rec
}

// LatestPath возвращает последнюю траекторию или nil.
func (a *Account) LatestPath() *PathRecord {
	if len(a.LearningPaths) == 0 {
		return nil
	}
	p := a.LearningPaths[len(a.LearningPaths)-1]
	return &p
}

// FindPath ищет траекторию по ID.
func (a *Account) FindPath(id string) (PathRecord, bool) {
	for _, p := range a.LearningPaths {
		if p.ID == id {
			return p, true
		}
	}
	return PathRecord{}, false
}

// CountActivePaths считает траектории в статусе Active.
func CountActivePaths(paths []PathRecord) int {
	n := 0
	for _, p := range paths {
		if p.Status == PathActive {
			n++
		}
	}
	return n
}

// Clone возвращает глубокую копию, чтобы хранилище не раздавало внутренние срезы.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Profile.Skills = cloneStrings(a.Profile.Skills)
	c.Profile.LearningGoals = cloneStrings(a.Profile.LearningGoals)
	c.Profile.Interests = cloneStrings(a.Profile.Interests)
	c.LearningPaths = make([]PathRecord, len(a.LearningPaths))
	copy(c.LearningPaths, a.LearningPaths)
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
