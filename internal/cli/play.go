package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/viben/internal/adapters"
	"github.com/aretw0/viben/internal/presentation/tui"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/tutor"
)

// PlayOptions contains the configuration for the play command.
type PlayOptions struct {
	TutorialID string
	// SessionName persists progress under .viben/sessions when set.
	SessionName string
	SessionDir  string
	Fresh       bool
	// Plain forces the line-mode player even on a terminal.
	Plain bool
	Debug bool
}

// RunPlay opens a playback session, resuming a saved one when asked, and
// hands it to the interactive or line-mode player.
func RunPlay(ctx context.Context, app *App, opts PlayOptions) error {
	var (
		store *adapters.SessionStore
		state playback.State
	)
	if opts.SessionName != "" {
		store = adapters.NewSessionStore(opts.SessionDir)
		if opts.Fresh {
			if err := store.Delete(ctx, opts.SessionName); err != nil {
				return err
			}
		}
		saved, err := store.Load(ctx, opts.SessionName)
		switch {
		case err == nil && saved.TutorialID == opts.TutorialID:
			state = saved.State
			app.Logger.Info("Session Resumed", "session_id", opts.SessionName, "index", state.Index)
		case err == nil:
			app.Logger.Warn("Session belongs to another tutorial, starting over",
				"session_id", opts.SessionName, "tutorial_id", saved.TutorialID)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}

	sess, err := app.Pipeline.Resume(ctx, opts.TutorialID, state,
		playback.WithAutoAdvance(app.Config.Server.AutoAdvance))
	if err != nil {
		return err
	}

	onChange := func(st playback.State) {
		if store == nil {
			return
		}
		if err := store.Save(ctx, opts.SessionName, opts.TutorialID, st); err != nil {
			app.Logger.Error("Failed to save session", "session_id", opts.SessionName, "err", err)
		}
	}
	ask := tui.AskFunc(app.Pipeline.Ask)

	if !opts.Plain && IsTerminal(os.Stdin) && IsTerminal(os.Stdout) {
		_, err := tui.RunPlayer(tui.PlayerConfig{
			Context:  ctx,
			Session:  sess,
			OnChange: onChange,
			Ask:      ask,
		})
		return err
	}

	lp := &LinePlayer{
		In:       NewInterruptibleReader(os.Stdin, ctx.Done()),
		Out:      os.Stdout,
		Render:   tui.NewRenderer(0),
		OnChange: onChange,
		Ask:      ask,
	}
	return lp.Run(ctx, sess)
}

// LinePlayer drives a session from line commands, for pipes and dumb terminals.
type LinePlayer struct {
	In       io.Reader
	Out      io.Writer
	Render   tui.Renderer
	OnChange func(playback.State)
	Ask      tui.AskFunc

	// chats holds this run's tutor turns per card index.
	chats map[int][]domain.ChatMessage
}

const lineHelp = `commands: [enter]/n next · b back · 1-9 answer or choose · j N jump
          m read|watch|try|ask modality · ask QUESTION · toc · q quit`

// Run plays until the learner quits, input ends, or a closing celebration is reached.
func (lp *LinePlayer) Run(ctx context.Context, sess *playback.Session) error {
	sess.Enter()
	if err := lp.show(sess); err != nil {
		return err
	}
	fmt.Fprintln(lp.Out, lineHelp)

	scanner := bufio.NewScanner(lp.In)
	for {
		if sess.IsTerminal() {
			PrintSystemMessage(lp.Out, "Finished %q.", sess.Tutorial().Title)
			return nil
		}
		fmt.Fprint(lp.Out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		changed, err := lp.exec(ctx, sess, strings.TrimSpace(scanner.Text()))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			PrintSystemMessage(lp.Out, "%v", err)
			continue
		}
		if changed {
			if lp.OnChange != nil {
				lp.OnChange(sess.State())
			}
			if err := lp.show(sess); err != nil {
				return err
			}
		}
	}
}

var errQuit = errors.New("quit")

// exec runs one command and reports whether the session changed.
func (lp *LinePlayer) exec(ctx context.Context, sess *playback.Session, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "", "n", "next":
		if !sess.Advance() {
			return false, errors.New(blockedReason(sess))
		}
		return true, nil
	case "b", "back":
		return sess.GoBack(), nil
	case "j", "jump":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("jump needs a card number")
		}
		return true, sess.JumpTo(n - 1)
	case "m", "modality":
		return true, sess.SetModality(domain.Modality(arg))
	case "ask":
		return false, lp.ask(ctx, sess, arg)
	case "toc":
		for i, c := range sess.Tutorial().Cards {
			marker := " "
			if i == sess.Index() {
				marker = "●"
			}
			fmt.Fprintf(lp.Out, "%s %2d. %s %s\n", marker, i+1, c.Type, c.Title)
		}
		return false, nil
	case "q", "quit", "exit":
		return false, errQuit
	case "?", "help":
		fmt.Fprintln(lp.Out, lineHelp)
		return false, nil
	}

	n, err := strconv.Atoi(cmd)
	if err != nil || n < 1 {
		return false, fmt.Errorf("unknown command %q", line)
	}
	return lp.pick(ctx, sess, n-1)
}

func (lp *LinePlayer) pick(ctx context.Context, sess *playback.Session, n int) (bool, error) {
	card := sess.Card()
	switch card.Type {
	case domain.CardQuiz:
		return sess.AnswerQuiz(sess.Index(), n)
	case domain.CardChoice:
		if n >= len(card.Choices) {
			return false, fmt.Errorf("pick 1-%d", len(card.Choices))
		}
		p, err := sess.MakeChoice(card.Store, card.Choices[n].Tag)
		if err != nil || p == nil {
			return err == nil, err
		}
		if lp.OnChange != nil {
			lp.OnChange(sess.State())
		}
		if err := lp.wait(ctx, p.Delay); err != nil {
			return true, err
		}
		sess.Resolve(*p)
		return true, nil
	}
	return false, fmt.Errorf("nothing to pick on a %s card", card.Type)
}

func (lp *LinePlayer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (lp *LinePlayer) ask(ctx context.Context, sess *playback.Session, question string) error {
	if lp.Ask == nil {
		return errors.New("no tutor configured")
	}
	if question == "" {
		return errors.New("ask needs a question")
	}
	idx := sess.Index()
	turn := domain.ChatMessage{Role: domain.RoleUser, Content: question}
	messages := append(lp.conversation(sess, idx), turn)

	reply, err := lp.Ask(ctx, tutor.ContextFor(sess.Tutorial(), idx), messages)
	if err != nil {
		return err
	}
	if lp.chats == nil {
		lp.chats = map[int][]domain.ChatMessage{}
	}
	lp.chats[idx] = append(lp.chats[idx], turn, domain.ChatMessage{Role: domain.RoleBot, Content: reply})

	out, err := lp.Render(reply)
	if err != nil {
		out = reply
	}
	fmt.Fprintln(lp.Out, out)
	return nil
}

// conversation is the card's seeded opening followed by earlier turns on it.
func (lp *LinePlayer) conversation(sess *playback.Session, idx int) []domain.ChatMessage {
	var out []domain.ChatMessage
	if mods := sess.Tutorial().Cards[idx].Modalities; mods != nil && mods.Ask != nil {
		out = append(out, mods.Ask.InitialMessages...)
	}
	return append(out, lp.chats[idx]...)
}

func (lp *LinePlayer) show(sess *playback.Session) error {
	v, err := sess.View(sess.Pending())
	if err != nil {
		return err
	}
	md := tui.CardMarkdown(v)
	out, err := lp.Render(md)
	if err != nil {
		out = md
	}
	fmt.Fprintln(lp.Out, out)
	return nil
}

func blockedReason(sess *playback.Session) string {
	switch {
	case sess.AtEnd():
		return "end of tutorial"
	case sess.Card().Type == domain.CardQuiz:
		return "answer the quiz to continue"
	}
	return "cannot advance"
}
