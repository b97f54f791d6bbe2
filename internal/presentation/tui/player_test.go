package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/dsl"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/tutor"
)

func fixture() *domain.Tutorial {
	b := dsl.New("agent-mode", "Agent Mode")
	b.Intro("Meet the agent").Emoji("👋")
	b.Quiz("Who edits files?").
		Option("You", false).
		Option("The agent", true).
		Feedback("Right!", "Not quite")
	b.Concept("Ask away").
		Read("The <em>long</em> version").
		Ask(domain.ChatMessage{Role: domain.RoleBot, Content: "Hi! Ask me anything."})
	b.Choice("Where next?", "path").
		Pick("🛠", "Backend", "APIs", "backend").
		Pick("🎨", "Frontend", "UI", "frontend")
	b.Celebration("Done").Stats()
	return b.MustBuild()
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestPlayer(t *testing.T, cfg PlayerConfig) *Player {
	t.Helper()
	if cfg.Session == nil {
		sess, err := playback.New(fixture(), playback.WithAutoAdvance(0))
		require.NoError(t, err)
		cfg.Session = sess
	}
	m := NewPlayer(cfg)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestPlayer_QuizGate(t *testing.T) {
	var snapshots []playback.State
	m := newTestPlayer(t, PlayerConfig{OnChange: func(st playback.State) {
		snapshots = append(snapshots, st)
	}})

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 1, m.sess.Index())

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.sess.Index(), "unanswered quiz blocks advance")
	assert.Contains(t, m.status, "Answer the quiz")

	m.Update(keyRunes("7"))
	assert.Contains(t, m.status, "Pick 1-2")

	m.Update(keyRunes("2"))
	opt, ok := m.sess.Answer(1)
	require.True(t, ok)
	assert.Equal(t, 1, opt)

	m.Update(keyRunes("l"))
	assert.Equal(t, 2, m.sess.Index())

	m.Update(keyRunes("h"))
	assert.Equal(t, 1, m.sess.Index())

	require.Len(t, snapshots, 4)
	assert.Equal(t, 1, snapshots[len(snapshots)-1].Index)
}

func TestPlayer_ChoiceAutoAdvance(t *testing.T) {
	sess, err := playback.New(fixture(), playback.WithAutoAdvance(0))
	require.NoError(t, err)
	require.NoError(t, sess.JumpTo(3))
	m := newTestPlayer(t, PlayerConfig{Session: sess})

	_, cmd := m.Update(keyRunes("2"))
	require.NotNil(t, cmd, "a choice schedules the advance")
	tag, ok := m.sess.Choice("path")
	require.True(t, ok)
	assert.Equal(t, "frontend", tag)
	assert.Equal(t, 3, m.sess.Index(), "advance waits for the tick")

	msg := cmd()
	m.Update(msg)
	assert.Equal(t, 4, m.sess.Index())
	assert.True(t, m.sess.IsTerminal())

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Contains(t, m.status, "You made it")
}

func TestPlayer_StaleResolveIgnored(t *testing.T) {
	sess, err := playback.New(fixture(), playback.WithAutoAdvance(0))
	require.NoError(t, err)
	require.NoError(t, sess.JumpTo(3))
	m := newTestPlayer(t, PlayerConfig{Session: sess})

	_, cmd := m.Update(keyRunes("1"))
	require.NotNil(t, cmd)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 2, m.sess.Index())

	m.Update(cmd())
	assert.Equal(t, 2, m.sess.Index(), "navigation cancels the pending advance")
}

func TestPlayer_Contents(t *testing.T) {
	m := newTestPlayer(t, PlayerConfig{})

	m.Update(keyRunes("t"))
	require.True(t, m.toc)
	assert.Contains(t, m.View(), "Contents")

	m.Update(keyRunes("j"))
	m.Update(keyRunes("j"))
	m.Update(keyRunes("j"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.toc)
	assert.Equal(t, 3, m.sess.Index(), "jumping bypasses the quiz gate")

	m.Update(keyRunes("t"))
	m.Update(keyRunes("q"))
	assert.False(t, m.toc, "q closes the contents before quitting")
}

func TestPlayer_Quit(t *testing.T) {
	m := newTestPlayer(t, PlayerConfig{})
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlayer_AskTutor(t *testing.T) {
	var got []domain.ChatMessage
	var gotContext tutor.CardContext
	ask := func(ctx context.Context, cc tutor.CardContext, messages []domain.ChatMessage) (string, error) {
		got = messages
		gotContext = cc
		return "Because it reads the repo.", nil
	}

	sess, err := playback.New(fixture())
	require.NoError(t, err)
	require.NoError(t, sess.JumpTo(2))
	m := newTestPlayer(t, PlayerConfig{Session: sess, Ask: ask})
	require.Equal(t, domain.ModalityRead, m.sess.Modality())

	m.Update(keyRunes("a"))
	assert.False(t, m.asking)
	assert.Contains(t, m.status, "tab")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, domain.ModalityAsk, m.sess.Modality())

	m.Update(keyRunes("a"))
	require.True(t, m.asking)
	m.Update(keyRunes("why?"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.asking)
	assert.True(t, m.waiting)

	m.Update(cmd())
	assert.False(t, m.waiting)
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleBot, got[0].Role)
	assert.Equal(t, "why?", got[1].Content)
	assert.Equal(t, "Ask away", gotContext.Title)
	assert.Equal(t, "Agent Mode", gotContext.TutorialTitle)

	chat := m.chats[2]
	require.Len(t, chat, 2)
	assert.Equal(t, domain.RoleBot, chat[1].Role)
	assert.Contains(t, m.chatMarkdown(2), "**Tutor:** Because it reads the repo.")
}

func TestPlayer_AskFailure(t *testing.T) {
	ask := func(context.Context, tutor.CardContext, []domain.ChatMessage) (string, error) {
		return "", errors.New("offline")
	}
	sess, err := playback.New(fixture())
	require.NoError(t, err)
	require.NoError(t, sess.JumpTo(2))
	require.NoError(t, sess.SetModality(domain.ModalityAsk))
	m := newTestPlayer(t, PlayerConfig{Session: sess, Ask: ask})

	m.Update(keyRunes("a"))
	m.Update(keyRunes("hello"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Contains(t, m.status, "offline")
}

func TestPlayer_View(t *testing.T) {
	m := NewPlayer(PlayerConfig{Session: mustSession(t)})
	assert.Equal(t, "Loading…", m.View())

	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Agent Mode")
	assert.Contains(t, view, "1/5")
	assert.True(t, strings.Contains(view, "next"), "help line is shown")
}

func mustSession(t *testing.T) *playback.Session {
	t.Helper()
	sess, err := playback.New(fixture())
	require.NoError(t, err)
	return sess
}
