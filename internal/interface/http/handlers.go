package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pathwise/pathwise-hub/config"
	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/application/saga"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Pathwise Hub API",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":    "/health",
			"register":  "/api/v1/auth/register",
			"login":     "/api/v1/auth/login",
			"dashboard": "/api/v1/me/dashboard",
		},
	})
}

// handleHealth reports every registered dependency check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	acc, err := s.deps.Register.Handle(r.Context(), command.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, acc)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context(), handlers.BearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"logged_out": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	acc, err := s.deps.Accounts.Get(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, acc)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r, false)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r, true)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, onboarding bool) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Profile.Handle(r.Context(), command.UpdateProfileCommand{
		Username:   currentUser(r),
		Patch:      req.patch(),
		Onboarding: onboarding,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Activities.Handle(r.Context(), command.LogActivityCommand{
		Username:        currentUser(r),
		Type:            req.ActivityType,
		DurationMinutes: *req.DurationMinutes,
		Details:         req.Details,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Accounts.Activities(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, entries, &ResponseMeta{TotalCount: len(entries)})
}

// skillParam returns the decoded {skill} segment. chi matches on RawPath
// when it is set, so names like "UI%2FUX" or "C%2B%2B" arrive escaped.
func skillParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "skill")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", badRequest("invalid skill name", err.Error())
	}
	return name, nil
}

func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	name, err := skillParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req skillRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Skills.Handle(r.Context(), command.UpdateSkillCommand{
		Username:         currentUser(r),
		Skill:            name,
		Progress:         *req.Progress,
		ExperiencePoints: req.ExperiencePoints,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handlePracticeSkill(w http.ResponseWriter, r *http.Request) {
	name, err := skillParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req practiceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Skills.Practice(r.Context(), command.LogSkillPracticeCommand{
		Username: currentUser(r),
		Skill:    name,
		Minutes:  req.Minutes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Awards.Handle(r.Context(), command.AwardCommand{
		Username: currentUser(r),
		Name:     req.Name,
		Type:     req.Type,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Awarded {
		status = http.StatusOK
	}
	writeJSON(w, r, status, res)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := s.deps.Goals.Set(r.Context(), command.SetGoalCommand{
		Username:   currentUser(r),
		Title:      req.Title,
		TargetDate: req.targetDate(s.location()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, g)
}

func (s *Server) handleAchieveGoal(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Goals.Achieve(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Dashboard.Snapshot(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.deps.Dashboard.Insights(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{"insights": insights})
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGeneratePath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	template := req.Template
	if template == "" && !s.enabled(r, config.FeatureAIGeneration) {
		template = "career"
	}

	res, err := s.deps.Paths.Execute(r.Context(), saga.GeneratePathInput{
		Username: currentUser(r),
		Request:  req.request(),
		Template: template,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.deps.Accounts.Paths(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, paths, &ResponseMeta{TotalCount: len(paths)})
}

// handlePathHTML returns a standalone HTML document rather than the envelope.
func (s *Server) handlePathHTML(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.deps.Accounts.PathHTML(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.html"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Resumes.Execute(r.Context(), saga.GenerateResumeInput{
		Username:         currentUser(r),
		FullName:         req.FullName,
		Goal:             req.Goal,
		AdditionalSkills: req.AdditionalSkills,
		Style:            req.Style,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.enabled(r, config.FeatureAssistant) {
		writeJSONError(w, r, http.StatusForbidden, "feature_disabled", "The career assistant is not available", "")
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Assistant.Ask(r.Context(), saga.AskInput{
		Username: currentUser(r),
		Question: req.Question,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// UPLOADS
// ══════════════════════════════════════════════════════════════════════════════

// handleExtract accepts one multipart file in the "file" field.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.enabled(r, config.FeatureUploads) {
		writeJSONError(w, r, http.StatusForbidden, "feature_disabled", "File uploads are not available", "")
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			s.writeError(w, r, &http.MaxBytesError{Limit: s.config.MaxUploadBytes})
			return
		}
		s.writeError(w, r, badRequest("expected multipart/form-data", err.Error()))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, badRequest("file field is required", err.Error()))
		return
	}
	defer file.Close()

	res := s.deps.Extractor.Extract(header.Filename, header.Header.Get("Content-Type"), file)
	writeJSON(w, r, http.StatusOK, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// currentUser is only called behind BearerAuth.
func currentUser(r *http.Request) shared.Username {
	u, _ := handlers.UsernameFrom(r.Context())
	return u
}

func (s *Server) location() *time.Location {
	if s.config.Location != nil {
		return s.config.Location
	}
	return time.UTC
}
