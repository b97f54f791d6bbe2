package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/tutor"
)

// AskFunc forwards a learner question to the tutor.
type AskFunc func(ctx context.Context, cc tutor.CardContext, messages []domain.ChatMessage) (string, error)

// PlayerConfig wires a playback session into the interactive player.
type PlayerConfig struct {
	Context context.Context
	Session *playback.Session
	// Style is a glamour standard style; empty means "dark".
	Style string
	// OnChange receives the snapshot after every state change.
	OnChange func(playback.State)
	// Ask enables the tutor on cards offering the ask modality.
	Ask AskFunc
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	helperStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f472b6"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e879f9"))
)

const (
	headerHeight = 2
	footerHeight = 4
)

type resolveMsg struct {
	pending playback.Pending
}

type replyMsg struct {
	index int
	reply string
	err   error
}

// Player is the bubbletea model driving one playback session.
type Player struct {
	cfg  PlayerConfig
	sess *playback.Session

	render Renderer
	keys   keyMap
	vp     viewport.Model
	bar    progress.Model
	help   help.Model
	input  textinput.Model

	width  int
	height int
	ready  bool

	toc       bool
	tocCursor int
	asking    bool
	waiting   bool
	chats     map[int][]domain.ChatMessage
	status    string
}

// NewPlayer returns a tea.Model ready to be mounted into a Program.
func NewPlayer(cfg PlayerConfig) *Player {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Style == "" {
		cfg.Style = "dark"
	}

	input := textinput.New()
	input.Placeholder = "Ask about this card…"
	input.CharLimit = 500
	input.Width = 70

	return &Player{
		cfg:    cfg,
		sess:   cfg.Session,
		render: NewStyledRenderer(cfg.Style, 80),
		keys:   defaultKeyMap(),
		vp:     viewport.New(80, 20),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:   help.New(),
		input:  input,
		chats:  map[int][]domain.ChatMessage{},
	}
}

// Session returns the session being played.
func (m *Player) Session() *playback.Session { return m.sess }

func (m *Player) Init() tea.Cmd {
	m.sess.Enter()
	m.refresh()
	return nil
}

func (m *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case resolveMsg:
		if m.sess.Resolve(msg.pending) {
			m.changed()
		}
		m.refresh()
		return m, nil
	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Tutor unavailable: " + msg.err.Error()
		} else {
			m.chats[msg.index] = append(m.chats[msg.index], domain.ChatMessage{Role: domain.RoleBot, Content: msg.reply})
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.asking {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.toc {
		return m.handleContentsKey(msg)
	}

	var cmd tea.Cmd
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		if m.sess.Advance() {
			m.changed()
		} else {
			m.status = m.blockedReason()
		}
	case key.Matches(msg, m.keys.Back):
		if m.sess.GoBack() {
			m.changed()
		}
	case key.Matches(msg, m.keys.Pick):
		cmd = m.pick(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.Modality):
		m.cycleModality()
	case key.Matches(msg, m.keys.Ask):
		cmd = m.startAsk()
	case key.Matches(msg, m.keys.Contents):
		m.toc = true
		m.tocCursor = m.sess.Index()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.vp.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.vp.LineDown(1)
		return m, nil
	default:
		return m, nil
	}
	m.refresh()
	return m, cmd
}

func (m *Player) handleContentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.tocCursor > 0 {
			m.tocCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.tocCursor < m.sess.Len()-1 {
			m.tocCursor++
		}
	case msg.Type == tea.KeyEnter:
		if err := m.sess.JumpTo(m.tocCursor); err == nil {
			m.changed()
		}
		m.toc = false
		m.refresh()
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Contents):
		m.toc = false
	}
	return m, nil
}

// pick answers the quiz or makes the choice at zero-based position n.
func (m *Player) pick(n int) tea.Cmd {
	card := m.sess.Card()
	switch card.Type {
	case domain.CardQuiz:
		if n >= len(card.Options) {
			m.status = fmt.Sprintf("Pick 1-%d", len(card.Options))
			return nil
		}
		recorded, err := m.sess.AnswerQuiz(m.sess.Index(), n)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		if recorded {
			m.changed()
		}
	case domain.CardChoice:
		if n >= len(card.Choices) {
			m.status = fmt.Sprintf("Pick 1-%d", len(card.Choices))
			return nil
		}
		p, err := m.sess.MakeChoice(card.Store, card.Choices[n].Tag)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.changed()
		if p != nil {
			pending := *p
			return tea.Tick(pending.Delay, func(time.Time) tea.Msg {
				return resolveMsg{pending: pending}
			})
		}
	}
	return nil
}

func (m *Player) cycleModality() {
	offered := m.sess.Card().Modalities.Offered()
	if len(offered) < 2 {
		return
	}
	next := offered[0]
	for i, mod := range offered {
		if mod == m.sess.Modality() {
			next = offered[(i+1)%len(offered)]
			break
		}
	}
	if err := m.sess.SetModality(next); err != nil {
		m.status = err.Error()
		return
	}
	m.changed()
}

func (m *Player) startAsk() tea.Cmd {
	if m.sess.Modality() != domain.ModalityAsk {
		m.status = "This card has no tutor"
		if m.sess.Card().Modalities.Has(domain.ModalityAsk) {
			m.status = "Press tab to open the ask modality"
		}
		return nil
	}
	if m.cfg.Ask == nil {
		m.status = "No tutor configured"
		return nil
	}
	if m.waiting {
		return nil
	}
	m.asking = true
	return m.input.Focus()
}

func (m *Player) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.stopInput()
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		question := strings.TrimSpace(m.input.Value())
		m.stopInput()
		if question == "" {
			return m, nil
		}
		return m, m.ask(question)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Player) stopInput() {
	m.asking = false
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Player) ask(question string) tea.Cmd {
	idx := m.sess.Index()
	m.chats[idx] = append(m.chats[idx], domain.ChatMessage{Role: domain.RoleUser, Content: question})
	messages := m.conversation(idx)
	m.waiting = true
	m.refresh()

	ctx := m.cfg.Context
	askFn := m.cfg.Ask
	cc := tutor.ContextFor(m.sess.Tutorial(), idx)
	return func() tea.Msg {
		reply, err := askFn(ctx, cc, messages)
		return replyMsg{index: idx, reply: reply, err: err}
	}
}

// conversation is the seeded opening of the card followed by this session's turns.
func (m *Player) conversation(idx int) []domain.ChatMessage {
	var out []domain.ChatMessage
	if mods := m.sess.Tutorial().Cards[idx].Modalities; mods != nil && mods.Ask != nil {
		out = append(out, mods.Ask.InitialMessages...)
	}
	return append(out, m.chats[idx]...)
}

func (m *Player) blockedReason() string {
	switch {
	case m.sess.IsTerminal():
		return "You made it! Press q to quit."
	case m.sess.AtEnd():
		return "End of tutorial. Press q to quit."
	case m.sess.Card().Type == domain.CardQuiz:
		return "Answer the quiz to continue (1-9)."
	}
	return ""
}

func (m *Player) changed() {
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(m.sess.State())
	}
	m.vp.GotoTop()
}

func (m *Player) resize(width, height int) {
	m.width, m.height = width, height
	m.render = NewStyledRenderer(m.cfg.Style, width-2)
	m.vp.Width = width
	m.vp.Height = height - headerHeight - footerHeight
	if m.vp.Height < 3 {
		m.vp.Height = 3
	}
	m.bar.Width = width / 3
	m.help.Width = width
	m.input.Width = width - 4
	m.ready = true
	m.refresh()
}

func (m *Player) refresh() {
	v, err := m.sess.View(m.sess.Pending())
	if err != nil {
		m.status = err.Error()
		return
	}
	md := CardMarkdown(v)
	if v.Modality == domain.ModalityAsk {
		md += m.chatMarkdown(v.Index)
	}
	out, err := m.render(md)
	if err != nil {
		out = md
	}
	m.vp.SetContent(out)
}

func (m *Player) chatMarkdown(idx int) string {
	var sb strings.Builder
	for _, msg := range m.chats[idx] {
		who := "You"
		if msg.Role == domain.RoleBot {
			who = "Tutor"
		}
		fmt.Fprintf(&sb, "\n**%s:** %s\n", who, msg.Content)
	}
	if m.waiting {
		sb.WriteString("\n_Thinking…_\n")
	}
	return sb.String()
}

func (m *Player) View() string {
	if !m.ready {
		return "Loading…"
	}

	t := m.sess.Tutorial()
	percent := float64(m.sess.Index()+1) / float64(m.sess.Len())
	header := titleStyle.Render(t.Title) + "  " + m.bar.ViewAs(percent) +
		helperStyle.Render(fmt.Sprintf("  %d/%d", m.sess.Index()+1, m.sess.Len()))

	body := m.vp.View()
	if m.toc {
		body = m.contentsView()
	}

	parts := []string{header, body}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(wordwrap.String(m.status, m.width)))
	}
	if m.asking {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Player) contentsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Contents"))
	sb.WriteString("\n\n")
	for i, c := range m.sess.Tutorial().Cards {
		marker := "  "
		if i == m.sess.Index() {
			marker = "● "
		}
		title := strings.TrimSpace(c.Emoji + " " + c.Title)
		if title == "" {
			title = string(c.Type)
		}
		line := fmt.Sprintf("%s%2d. %s", marker, i+1, title)
		if i == m.tocCursor {
			line = cursorStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(helperStyle.Render("\n↑/↓ select · enter jump · t close"))
	return sb.String()
}

// RunPlayer runs the player full screen until the learner quits.
func RunPlayer(cfg PlayerConfig) (*playback.Session, error) {
	m := NewPlayer(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.cfg.Context))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(*Player).Session(), nil
}
