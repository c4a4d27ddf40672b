package coordinator

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/playback"
	"github.com/abhisek/careerflow/internal/speech"
)

func newContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func (c *Coordinator) startCmd(role string, level interview.ExperienceLevel) tea.Cmd {
	ctx, epoch, client := c.ctx, c.epoch, c.client
	return func() tea.Msg {
		q, err := client.Start(ctx, role, level)
		return sessionStartedMsg{epoch: epoch, question: q, err: err}
	}
}

func (c *Coordinator) answerCmd(sessionID, text string) tea.Cmd {
	ctx, epoch, client := c.ctx, c.epoch, c.client
	return func() tea.Msg {
		turn, err := client.Answer(ctx, sessionID, text)
		return answerReceivedMsg{epoch: epoch, turn: turn, err: err}
	}
}

func (c *Coordinator) listenCmd(gen uint64) tea.Cmd {
	ctx, epoch, rec := c.ctx, c.epoch, c.recognizer
	return func() tea.Msg {
		events, err := rec.Start(ctx)
		return speechStartedMsg{epoch: epoch, gen: gen, events: events, err: err}
	}
}

// waitForSpeech delivers the next recognizer event as a message.
func waitForSpeech(epoch, gen uint64, events <-chan speech.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return speechEventMsg{epoch: epoch, gen: gen, events: events, event: ev, closed: !ok}
	}
}

// waitForClip reports when clip stops playing.
func waitForClip(epoch uint64, clip *playback.Clip) tea.Cmd {
	return func() tea.Msg {
		<-clip.Done()
		return audioEndedMsg{epoch: epoch, seq: clip.Seq, url: clip.URL, err: clip.Err()}
	}
}
