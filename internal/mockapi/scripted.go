package mockapi

import (
	"context"
	"strings"

	"github.com/abhisek/careerflow/internal/interview"
)

// Exchange is one answered question.
type Exchange struct {
	Question string
	Answer   string
}

// Transcript is what a question source sees when choosing the next
// question.
type Transcript struct {
	Role    string
	Level   interview.ExperienceLevel
	History []Exchange
}

// LastAnswer returns the most recent answer, or "".
func (t Transcript) LastAnswer() string {
	if len(t.History) == 0 {
		return ""
	}
	return t.History[len(t.History)-1].Answer
}

// QuestionSource picks follow-up questions.
type QuestionSource interface {
	NextQuestion(ctx context.Context, t Transcript) (string, error)
}

// Assessment is the closing evaluation for a level.
type Assessment struct {
	Feedback   string
	Strengths  []string
	Weaknesses []string
}

// Scripted is the keyword-driven interviewer.
type Scripted struct{}

// Opening returns the first question for level.
func (Scripted) Opening(level interview.ExperienceLevel) string {
	switch level {
	case interview.LevelBeginner:
		return "Thank you for coming in today. To start, could you tell me a little about yourself and what drew you to this field?"
	case interview.LevelIntermediate:
		return "Thanks for joining us today. Can you walk me through your background and highlight a couple of accomplishments you're particularly proud of in your career so far?"
	default:
		return "Thank you for your time today. Given your extensive experience, I'd love to hear about a significant challenge you've faced in your career and how you approached solving it."
	}
}

// NextQuestion adapts to keywords in the last answer.
func (Scripted) NextQuestion(_ context.Context, t Transcript) (string, error) {
	answer := strings.ToLower(t.LastAnswer())

	switch t.Level {
	case interview.LevelBeginner:
		if containsAny(answer, "don't know", "not sure") || len(strings.Fields(answer)) < 20 {
			return "Could you provide a more specific example? Think about a time when you faced a challenge and how you overcame it.", nil
		}
		return "That's helpful. Can you tell me about a time when you had to work with a difficult team member? How did you handle the situation?", nil

	case interview.LevelIntermediate:
		switch {
		case containsAny(answer, "led", "managed", "coordinated"):
			return "That's interesting. Can you quantify the impact of that leadership role? What specific results did your team achieve?", nil
		case containsAny(answer, "problem", "challenge"):
			return "You mentioned a challenge. What would you do differently if you faced a similar situation in the future?", nil
		}
		return "Let's talk about your technical skills. Can you describe a complex project you've worked on and your specific contributions to its success?", nil

	default:
		switch {
		case containsAny(answer, "strategy", "vision", "long-term"):
			return "That's a compelling vision. How would you measure the success of that strategy, and what key performance indicators would you track?", nil
		case containsAny(answer, "team", "people"):
			return "You've mentioned leading teams. How do you approach developing talent and building high-performing teams?", nil
		}
		return "Given your experience, how do you approach making decisions when you have incomplete information? Can you walk me through your decision-making framework?", nil
	}
}

// Assess returns the closing evaluation for level.
func (Scripted) Assess(level interview.ExperienceLevel) Assessment {
	switch level {
	case interview.LevelBeginner:
		return Assessment{
			Feedback:   "You did a great job explaining your background and motivations. For future interviews, try to connect your experiences more directly to the role requirements. Your enthusiasm is a strength!",
			Strengths:  []string{"Clear communication", "Enthusiasm and motivation", "Good foundational understanding"},
			Weaknesses: []string{"Could connect experiences more directly to role", "Need more specific examples", "Technical depth could be improved"},
		}
	case interview.LevelIntermediate:
		return Assessment{
			Feedback:   "You demonstrated solid experience and good problem-solving abilities. To elevate your performance, focus on quantifying your achievements with specific metrics and showing more leadership initiative.",
			Strengths:  []string{"Relevant experience", "Good problem-solving approach", "Clear communication"},
			Weaknesses: []string{"Could include more specific metrics", "Need to elaborate on leadership examples", "Technical depth could be improved"},
		}
	default:
		return Assessment{
			Feedback:   "You showcased extensive experience and strategic thinking. To refine your approach, consider providing more concise answers while maintaining depth, and ensure you're directly addressing the question asked.",
			Strengths:  []string{"Extensive experience", "Strategic thinking", "Strong technical foundation"},
			Weaknesses: []string{"Answers could be more concise", "Need to directly address questions", "Could show more innovative approaches"},
		}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
