package coordinator

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/autosubmit"
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/speech"
)

func (c *Coordinator) handleStart(msg StartMsg) tea.Cmd {
	if c.state.Status != interview.StatusIdle {
		return nil
	}

	c.state.Role = msg.Role
	c.state.Level = msg.Level

	if strings.TrimSpace(msg.Role) == "" {
		c.state.Err = interview.UserMessage(&interview.ValidationError{
			Field: "role", Message: "Please enter the role you are interviewing for.",
		})
		return nil
	}
	if !msg.Level.Valid() {
		c.state.Err = interview.UserMessage(&interview.ValidationError{
			Field: "experience_level", Message: "Please choose an experience level.",
		})
		return nil
	}

	c.state.Err = ""
	c.state.Status = interview.StatusStarting
	c.logger.Info("starting interview", "role", msg.Role, "level", msg.Level)
	return c.startCmd(strings.TrimSpace(msg.Role), msg.Level)
}

func (c *Coordinator) handleSessionStarted(msg sessionStartedMsg) tea.Cmd {
	if msg.epoch != c.epoch || c.state.Status != interview.StatusStarting {
		return nil
	}

	if msg.err != nil {
		c.logger.Error("start interview", "role", c.state.Role, "error", msg.err)
		c.state.Status = interview.StatusIdle
		c.state.SessionID = ""
		c.state.Err = requestFailure(msg.err)
		return nil
	}

	q := *msg.question
	c.state.SessionID = q.SessionID
	c.state.Question = &q
	c.state.QuestionNumber = 1
	c.state.Chat = []interview.ChatMessage{interview.NewChatMessage(interview.SpeakerAI, q.Text, c.now())}
	c.state.Status = interview.StatusAwaitingAnswer

	c.recorder.Begin(q.SessionID, c.state.Role, c.state.Level, q)
	c.logger.Info("interview started", "session_id", q.SessionID)
	return c.playQuestion(q)
}

func (c *Coordinator) handleSetAnswer(msg SetAnswerMsg) tea.Cmd {
	if c.state.Status != interview.StatusAwaitingAnswer {
		return nil
	}
	c.state.Answer = msg.Text
	return nil
}

// submit sends the current answer. It is a no-op unless a question is
// awaiting an answer and there is either text or an active voice pass.
func (c *Coordinator) submit() tea.Cmd {
	if c.state.Status != interview.StatusAwaitingAnswer || c.state.SessionID == "" {
		return nil
	}

	text := strings.TrimSpace(c.state.Answer)
	if text == "" {
		if !c.state.Listening {
			return nil
		}
		text = interview.VoiceSubmissionPlaceholder
	}

	c.stopListening()
	c.timer.Cancel()

	c.state.Chat = append(c.state.Chat, interview.NewChatMessage(interview.SpeakerUser, text, c.now()))
	c.state.Answer = ""
	c.state.Err = ""
	c.state.Status = interview.StatusSubmitting

	c.recorder.Answer(text)
	return c.answerCmd(c.state.SessionID, text)
}

func (c *Coordinator) handleAnswerReceived(msg answerReceivedMsg) tea.Cmd {
	if msg.epoch != c.epoch || c.state.Status != interview.StatusSubmitting {
		return nil
	}

	if msg.err != nil {
		c.logger.Error("submit answer", "session_id", c.state.SessionID, "error", msg.err)
		c.state.Status = interview.StatusAwaitingAnswer
		c.state.Err = requestFailure(msg.err)
		return nil
	}

	if msg.turn.Complete() {
		result := *msg.turn.Result
		c.state.Result = &result
		c.state.Status = interview.StatusComplete
		c.recorder.Complete(result)
		c.logger.Info("interview complete",
			"session_id", c.state.SessionID,
			"final_score", result.FinalScore)
		return nil
	}

	q := *msg.turn.Question
	if q.SessionID == "" {
		q.SessionID = c.state.SessionID
	}
	c.state.Question = &q
	c.state.QuestionNumber++
	c.state.Chat = append(c.state.Chat, interview.NewChatMessage(interview.SpeakerAI, q.Text, c.now()))
	c.state.Status = interview.StatusAwaitingAnswer

	c.recorder.Question(q)
	return c.playQuestion(q)
}

func (c *Coordinator) handleToggleListening() tea.Cmd {
	if c.state.Status != interview.StatusAwaitingAnswer {
		return nil
	}

	if c.state.Listening || c.state.MicPending {
		c.stopListening()
		c.timer.Cancel()
		return nil
	}

	if !c.recognizer.IsSupported() {
		c.state.Err = interview.UserMessage(&interview.UnsupportedCapabilityError{
			Capability: interview.CapabilitySpeech,
		})
		return nil
	}

	c.state.Answer = ""
	c.state.Partial = ""
	c.state.Err = ""
	c.state.MicPending = true
	c.listenGen++
	return c.listenCmd(c.listenGen)
}

func (c *Coordinator) handleSpeechStarted(msg speechStartedMsg) tea.Cmd {
	if msg.epoch != c.epoch || msg.gen != c.listenGen || !c.state.MicPending {
		// The pass was abandoned while the microphone was opening.
		if msg.err == nil && !c.state.MicPending && !c.state.Listening {
			c.stopRecognizer()
		}
		return nil
	}

	c.state.MicPending = false
	if msg.err != nil {
		c.logger.Warn("start speech recognition", "error", msg.err)
		c.state.Listening = false
		c.state.Err = interview.UserMessage(msg.err)
		return nil
	}

	c.state.Listening = true
	return waitForSpeech(msg.epoch, msg.gen, msg.events)
}

func (c *Coordinator) handleSpeechEvent(msg speechEventMsg) tea.Cmd {
	if msg.epoch != c.epoch || msg.gen != c.listenGen || !c.state.Listening {
		return nil
	}
	if c.state.Status != interview.StatusAwaitingAnswer {
		return nil
	}

	if msg.closed {
		return c.speechEnded()
	}

	ev := msg.event
	switch ev.Kind {
	case speech.KindPartial:
		c.state.Partial = ev.Text
		return waitForSpeech(msg.epoch, msg.gen, msg.events)

	case speech.KindFinal:
		c.state.Partial = ""
		if ev.Text != "" {
			c.state.Answer += ev.Text + " "
		}
		return tea.Batch(c.timer.Arm(c.delay), waitForSpeech(msg.epoch, msg.gen, msg.events))

	case speech.KindEnd:
		return c.speechEnded()

	case speech.KindError:
		c.logger.Warn("speech recognition error", "error", ev.Err)
		c.stopListening()
		c.timer.Cancel()
		c.state.Err = interview.UserMessage(ev.Err)
		return nil
	}

	return waitForSpeech(msg.epoch, msg.gen, msg.events)
}

// speechEnded handles the recognizer stopping on its own after a pause.
func (c *Coordinator) speechEnded() tea.Cmd {
	c.stopListening()
	if strings.TrimSpace(c.state.Answer) == "" {
		return nil
	}
	return c.submit()
}

func (c *Coordinator) handleAutoSubmit(msg autosubmit.FiredMsg) tea.Cmd {
	if !c.timer.Fire(msg) {
		return nil
	}
	if strings.TrimSpace(c.state.Answer) == "" {
		return nil
	}
	return c.submit()
}

func (c *Coordinator) handleReplay() tea.Cmd {
	if !c.CanReplay() {
		return nil
	}
	clip, err := c.player.Replay()
	if err != nil {
		c.logger.Debug("replay question audio", "error", err)
		return nil
	}
	c.clipSeq = clip.Seq
	c.state.Playing = true
	return waitForClip(c.epoch, clip)
}

func (c *Coordinator) handleAudioEnded(msg audioEndedMsg) tea.Cmd {
	if msg.epoch != c.epoch || msg.seq != c.clipSeq {
		return nil
	}
	c.state.Playing = false
	if msg.err != nil {
		perr := &interview.PlaybackError{URL: msg.url, Err: msg.err}
		c.logger.Warn("question audio failed", "error", perr)
	}
	return nil
}

// reset abandons the attempt. Voice input and audio are stopped before
// any state is cleared.
func (c *Coordinator) reset() {
	c.stopListening()
	c.timer.Cancel()
	c.player.Stop()

	if c.state.SessionID != "" && c.state.Status != interview.StatusComplete {
		c.recorder.Cancel()
	}

	c.cancel()
	c.epoch++
	c.ctx, c.cancel = newContext()
	c.clipSeq = 0

	c.state = State{
		Status: interview.StatusIdle,
		Role:   c.state.Role,
		Level:  c.state.Level,
	}
}

// playQuestion releases the previous clip and plays q's audio, if any.
func (c *Coordinator) playQuestion(q interview.Question) tea.Cmd {
	if q.AudioURL == "" {
		c.player.Stop()
		c.state.Playing = false
		c.clipSeq = 0
		return nil
	}
	clip := c.player.Play(c.client.AudioURL(q.AudioURL))
	c.clipSeq = clip.Seq
	c.state.Playing = true
	return waitForClip(c.epoch, clip)
}

// stopListening ends any voice pass, including one still opening.
func (c *Coordinator) stopListening() {
	if !c.state.Listening && !c.state.MicPending {
		return
	}
	c.listenGen++
	c.state.Listening = false
	c.state.MicPending = false
	c.state.Partial = ""
	c.stopRecognizer()
}

func (c *Coordinator) stopRecognizer() {
	if err := c.recognizer.Stop(); err != nil {
		c.logger.Debug("stop speech recognition", "error", err)
	}
}

// requestFailure maps a start or answer failure to the text shown.
func requestFailure(err error) string {
	var valErr *interview.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return interview.SessionFailedMessage
}
