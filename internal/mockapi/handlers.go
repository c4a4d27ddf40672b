package mockapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abhisek/careerflow/internal/interview"
)

const (
	statusContinue = "continue"
	statusComplete = "complete"
)

type startRequest struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

type answerRequest struct {
	SessionID  string `json:"session_id"`
	AnswerText string `json:"answer_text"`
}

type continueResponse struct {
	Status       string `json:"status"`
	SessionID    string `json:"session_id"`
	QuestionText string `json:"question_text"`
	AudioURL     string `json:"audio_url"`
}

type completeResponse struct {
	Status          string   `json:"status"`
	FinalScore      int      `json:"final_score"`
	OverallFeedback string   `json:"overall_feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) handleStart(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}
	level, err := interview.ParseLevel(req.ExperienceLevel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "experience_level must be Beginner, Intermediate or Expert")
	}

	sess := s.sessions.create(role, level, s.scripted.Opening(level))
	s.metrics.started.Inc()
	s.logger.Info("interview started",
		"session_id", sess.id,
		"role", role,
		"level", level)

	return c.JSON(http.StatusOK, continueResponse{
		Status:       statusContinue,
		SessionID:    sess.id,
		QuestionText: sess.question,
		AudioURL:     audioPath(sess.id, 1),
	})
}

func (s *Server) handleAnswer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	sess, ok := s.sessions.get(req.SessionID)
	if !ok {
		s.metrics.answers.WithLabelValues("not_found").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "Interview session not found")
	}
	if !sess.busy.TryLock() {
		s.metrics.conflicts.Inc()
		return echo.NewHTTPError(http.StatusLocked, "Interview session is busy")
	}
	defer sess.busy.Unlock()

	answer := strings.TrimSpace(req.AnswerText)
	if answer == "" {
		s.metrics.answers.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "answer_text is required")
	}

	sess.history = append(sess.history, Exchange{Question: sess.question, Answer: answer})

	if len(sess.history) >= s.cfg.QuestionsPerInterview {
		s.sessions.remove(sess.id)
		s.metrics.answers.WithLabelValues(statusComplete).Inc()
		a := s.scripted.Assess(sess.level)
		s.logger.Info("interview complete",
			"session_id", sess.id,
			"answers", len(sess.history))
		return c.JSON(http.StatusOK, completeResponse{
			Status:          statusComplete,
			FinalScore:      s.cfg.FinalScore,
			OverallFeedback: a.Feedback,
			Strengths:       a.Strengths,
			Weaknesses:      a.Weaknesses,
		})
	}

	next, err := s.questions.NextQuestion(c.Request().Context(), sess.transcript())
	if err != nil {
		// Drop the exchange so the same answer can be resubmitted.
		sess.history = sess.history[:len(sess.history)-1]
		s.metrics.answers.WithLabelValues("error").Inc()
		s.logger.Error("next question failed", "session_id", sess.id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error processing answer")
	}
	sess.question = next
	s.metrics.answers.WithLabelValues(statusContinue).Inc()

	return c.JSON(http.StatusOK, continueResponse{
		Status:       statusContinue,
		SessionID:    sess.id,
		QuestionText: next,
		AudioURL:     audioPath(sess.id, len(sess.history)+1),
	})
}

func (s *Server) handleAudio(c echo.Context) error {
	if s.cfg.AudioDir == "" {
		return echo.NewHTTPError(http.StatusNotFound, "Audio not found")
	}
	name := filepath.Base(c.Param("file"))
	path := filepath.Join(s.cfg.AudioDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound, "Audio not found")
	}
	return c.File(path)
}

func audioPath(sessionID string, n int) string {
	return fmt.Sprintf("/audio/%s_q%d.mp3", sessionID, n)
}
