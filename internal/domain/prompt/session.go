package prompt

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const (
	DefaultTimeout  = 30 * time.Second
	callbackTimeout = 30 * time.Second
)

// TimeoutText is posted when a session expires and no OnTimeout is set.
const TimeoutText = "⌛ Timed-out."

var ErrTimeout = errors.New("prompt timed out")

// Key identifies a conversation: answers are only taken from this user in this channel.
type Key struct {
	UserID    snowflake.ID
	ChannelID snowflake.ID
}

type Question struct {
	Name string
	Text string
	// Parse turns the reply into the stored answer. An error re-asks the question.
	Parse func(content string) (any, error)
}

type Answers map[string]any

type Session struct {
	Questions  []Question
	OnComplete func(ctx context.Context, answers Answers)
	OnTimeout  func(ctx context.Context, err error)
}

// Sender posts a question into the channel the session runs in.
type Sender interface {
	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
}

type state struct {
	session Session
	answers Answers
	step    int
	gen     int
	timer   *time.Timer
}

// Manager tracks the open prompt sessions. Nothing blocks while waiting for
// a reply: Feed is driven by the message listener and timeouts fire from timers.
type Manager struct {
	mu       sync.Mutex
	sessions map[Key]*state
	sender   Sender
	timeout  time.Duration
}

func NewManager(sender Sender, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		sessions: make(map[Key]*state),
		sender:   sender,
		timeout:  timeout,
	}
}

func (m *Manager) Timeout() time.Duration {
	return m.timeout
}

// Start opens a session and asks its first question. An existing session for
// the same key is dropped without running its callbacks.
func (m *Manager) Start(ctx context.Context, key Key, session Session) error {
	if len(session.Questions) == 0 {
		if session.OnComplete != nil {
			session.OnComplete(ctx, Answers{})
		}
		return nil
	}

	st := &state{session: session, answers: make(Answers, len(session.Questions))}

	m.mu.Lock()
	if old, ok := m.sessions[key]; ok {
		old.timer.Stop()
	}
	m.sessions[key] = st
	m.arm(key, st)
	m.mu.Unlock()

	return m.ask(ctx, key, session.Questions[0].Text)
}

// Feed hands a message to the session for key. It reports whether a session
// consumed it.
func (m *Manager) Feed(ctx context.Context, key Key, content string) bool {
	m.mu.Lock()
	st, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return false
	}

	q := st.session.Questions[st.step]
	value, err := q.Parse(content)
	if err != nil {
		m.arm(key, st)
		m.mu.Unlock()
		_ = m.ask(ctx, key, "❌ "+err.Error()+"\n"+q.Text)
		return true
	}

	st.answers[q.Name] = value
	st.step++
	if st.step < len(st.session.Questions) {
		next := st.session.Questions[st.step].Text
		m.arm(key, st)
		m.mu.Unlock()
		_ = m.ask(ctx, key, next)
		return true
	}

	st.timer.Stop()
	delete(m.sessions, key)
	m.mu.Unlock()

	if st.session.OnComplete != nil {
		st.session.OnComplete(ctx, st.answers)
	}
	return true
}

// Cancel drops the session for key without running its callbacks.
func (m *Manager) Cancel(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[key]
	if !ok {
		return false
	}
	st.timer.Stop()
	delete(m.sessions, key)
	return true
}

func (m *Manager) Active(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[key]
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// arm restarts the session's timeout. Callers hold m.mu.
func (m *Manager) arm(key Key, st *state) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.gen++
	gen := st.gen
	st.timer = time.AfterFunc(m.timeout, func() {
		m.expire(key, st, gen)
	})
}

func (m *Manager) expire(key Key, st *state, gen int) {
	m.mu.Lock()
	if cur, ok := m.sessions[key]; !ok || cur != st || st.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, key)
	m.mu.Unlock()

	slog.Debug("Prompt session timed out",
		slog.String("user_id", key.UserID.String()),
		slog.String("channel_id", key.ChannelID.String()))

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()
	if st.session.OnTimeout != nil {
		st.session.OnTimeout(ctx, ErrTimeout)
		return
	}
	_ = m.ask(ctx, key, TimeoutText)
}

func (m *Manager) ask(ctx context.Context, key Key, text string) error {
	if m.sender == nil {
		return nil
	}
	if _, err := m.sender.SendMessage(ctx, key.ChannelID, text); err != nil {
		slog.Warn("Failed to send prompt",
			slog.String("channel_id", key.ChannelID.String()),
			slog.Any("error", err))
		return err
	}
	return nil
}
