package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Transcript is one result from the transcription service.
type Transcript struct {
	Text string

	// IsFinal marks text the service will not revise.
	IsFinal bool

	// SpeechFinal marks the end of an utterance after a pause.
	SpeechFinal bool
}

// TranscriptStream carries audio up and transcripts down.
type TranscriptStream interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Transcripts() <-chan Transcript
	// Close tears the stream down and returns the first stream error.
	Close() error
	// Err returns the error that ended the stream, if any. It is only
	// meaningful once Transcripts is closed.
	Err() error
}

// Transcriber opens transcription streams.
type Transcriber interface {
	Available() error
	Open(ctx context.Context) (TranscriptStream, error)
}

// DeepgramConfig controls the live transcription websocket.
type DeepgramConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string
	SmartFormat bool
	SampleRate  int
	Channels    int
}

// Deepgram streams linear16 audio to Deepgram's live listen endpoint.
type Deepgram struct {
	cfg    DeepgramConfig
	dialer *websocket.Dialer
}

func NewDeepgram(cfg DeepgramConfig) *Deepgram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &Deepgram{cfg: cfg, dialer: websocket.DefaultDialer}
}

func (d *Deepgram) Available() error {
	if strings.TrimSpace(d.cfg.APIKey) == "" {
		return errors.New("deepgram API key is not configured")
	}
	return nil
}

func (d *Deepgram) Open(ctx context.Context) (TranscriptStream, error) {
	if err := d.Available(); err != nil {
		return nil, err
	}

	wsURL, err := buildListenURL(d.cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.cfg.APIKey)

	conn, _, err := d.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("connect to deepgram: %w", err)
	}

	s := &deepgramStream{
		conn:        conn,
		transcripts: make(chan Transcript, 64),
		audio:       make(chan []byte, 32),
		done:        make(chan struct{}),
		closing:     make(chan struct{}),
		sendDone:    make(chan struct{}),
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	go func() {
		s.wg.Wait()
		close(s.transcripts)
		close(s.done)
		_ = conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

type deepgramStream struct {
	conn *websocket.Conn

	transcripts chan Transcript
	audio       chan []byte
	done        chan struct{}
	closing     chan struct{}
	wg          sync.WaitGroup

	errMu sync.Mutex
	err   error

	sendDone chan struct{}

	closeSendOnce sync.Once
	closeOnce     sync.Once
}

func (s *deepgramStream) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	copied := append([]byte(nil), chunk...)
	select {
	case <-s.sendDone:
		return errors.New("audio stream is closed")
	default:
	}
	select {
	case s.audio <- copied:
		return nil
	case <-s.sendDone:
		return errors.New("audio stream is closed")
	case <-s.done:
		if err := s.Err(); err != nil {
			return err
		}
		return errors.New("stream closed")
	}
}

// CloseSend flushes queued audio and asks the service to finish.
func (s *deepgramStream) CloseSend() error {
	s.closeSendOnce.Do(func() { close(s.sendDone) })
	return nil
}

func (s *deepgramStream) Transcripts() <-chan Transcript {
	return s.transcripts
}

func (s *deepgramStream) Close() error {
	s.closeOnce.Do(func() {
		// Closing the connection first unblocks any SendAudio waiting on a
		// full buffer before CloseSend takes the write lock.
		close(s.closing)
		_ = s.conn.Close()
		_ = s.CloseSend()
	})
	<-s.done
	return s.Err()
}

func (s *deepgramStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// isNormalClose reports whether err is the socket ending cleanly, either a
// normal close frame or our own Close. Wrapped errors are unwrapped.
func isNormalClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return true
		}
		return false
	}
	return errors.Is(err, net.ErrClosed)
}

func (s *deepgramStream) setErr(err error) {
	if err == nil || isNormalClose(err) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *deepgramStream) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				s.setErr(fmt.Errorf("send audio: %w", err))
				return
			}
		case <-s.sendDone:
			s.drain()
			// Best effort: the service may already have closed the socket.
			_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
			return
		}
	}
}

func (s *deepgramStream) drain() {
	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *deepgramStream) readLoop() {
	defer s.wg.Done()
	defer s.CloseSend()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("read transcript: %w", err))
			return
		}

		var resp listenResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			continue
		}

		if strings.EqualFold(resp.Type, "Error") {
			msg := strings.TrimSpace(resp.Message)
			if msg == "" {
				msg = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(msg))
			return
		}

		text := resp.transcript()
		if text == "" {
			if resp.SpeechFinal {
				s.emit(Transcript{IsFinal: true, SpeechFinal: true})
			}
			continue
		}

		s.emit(Transcript{
			Text:        text,
			IsFinal:     resp.IsFinal || resp.SpeechFinal,
			SpeechFinal: resp.SpeechFinal,
		})
	}
}

func (s *deepgramStream) emit(t Transcript) {
	select {
	case s.transcripts <- t:
	case <-s.closing:
	}
}

type listenAlternative struct {
	Transcript string `json:"transcript"`
}

type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []listenAlternative `json:"alternatives"`
	} `json:"channel"`
}

func (r listenResponse) transcript() string {
	if len(r.Channel.Alternatives) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Channel.Alternatives[0].Transcript)
}

func buildListenURL(cfg DeepgramConfig) (string, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid deepgram base URL: %w", err)
	}

	q := listenURL.Query()
	q.Set("model", cfg.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("channels", strconv.Itoa(cfg.Channels))
	q.Set("interim_results", "true")
	q.Set("smart_format", strconv.FormatBool(cfg.SmartFormat))
	if cfg.Language != "" {
		q.Set("language", cfg.Language)
	}
	listenURL.RawQuery = q.Encode()
	return listenURL.String(), nil
}
