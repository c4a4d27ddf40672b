package apiclient

import "github.com/abhisek/careerflow/internal/interview"

type startRequest struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

type answerRequest struct {
	SessionID  string `json:"session_id"`
	AnswerText string `json:"answer_text"`
}

// turnResponse covers both the continue and complete shapes.
type turnResponse struct {
	Status       string `json:"status"`
	SessionID    string `json:"session_id"`
	QuestionText string `json:"question_text"`
	AudioURL     string `json:"audio_url"`

	FinalScore      *int     `json:"final_score"`
	OverallFeedback string   `json:"overall_feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

type errorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// result applies the client-side fallbacks for a completed interview.
func (r turnResponse) result() *interview.Result {
	res := &interview.Result{
		FinalScore: interview.FallbackScore,
		Feedback:   r.OverallFeedback,
		Strengths:  r.Strengths,
		Weaknesses: r.Weaknesses,
	}
	if r.FinalScore != nil {
		res.FinalScore = *r.FinalScore
	}
	if res.Feedback == "" {
		res.Feedback = interview.FallbackFeedback
	}
	if res.Strengths == nil {
		res.Strengths = []string{}
	}
	if res.Weaknesses == nil {
		res.Weaknesses = []string{}
	}
	return res
}
