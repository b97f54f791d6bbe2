package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/viben/pkg/domain"
)

// Session drives one learner through one tutorial.
type Session struct {
	ctx      context.Context
	tutorial *domain.Tutorial
	state    State
	delay    time.Duration
	hooks    domain.LifecycleHooks
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithAutoAdvance overrides the delay returned with pending choice advances.
func WithAutoAdvance(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithHooks registers lifecycle callbacks for card, quiz and choice events.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithContext sets the context handed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// New starts a session at the first card.
func New(t *domain.Tutorial, opts ...Option) (*Session, error) {
	return Restore(t, State{}, opts...)
}

// Restore resumes a session from a snapshot produced by State.
// The snapshot is rejected if it does not fit the tutorial.
func Restore(t *domain.Tutorial, st State, opts ...Option) (*Session, error) {
	if t == nil || len(t.Cards) == 0 {
		return nil, ErrEmptyTutorial
	}
	if err := st.check(t); err != nil {
		return nil, err
	}

	s := &Session{
		ctx:      context.Background(),
		tutorial: t,
		state:    st.clone(),
		delay:    DefaultAutoAdvance,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.Modality == "" {
		s.state.Modality = s.defaultModality()
	}
	return s, nil
}

// Tutorial returns the tutorial being played.
func (s *Session) Tutorial() *domain.Tutorial { return s.tutorial }

// State returns a snapshot that can be passed to Restore.
func (s *Session) State() State { return s.state.clone() }

// Index returns the current card position.
func (s *Session) Index() int { return s.state.Index }

// Card returns the current card.
func (s *Session) Card() *domain.Card { return &s.tutorial.Cards[s.state.Index] }

// Len returns the number of cards.
func (s *Session) Len() int { return len(s.tutorial.Cards) }

// Modality returns the active modality of the current card, or "" if it offers none.
func (s *Session) Modality() domain.Modality { return s.state.Modality }

// Pending returns the scheduled advance, if any.
func (s *Session) Pending() *Pending {
	if s.state.Pending == nil {
		return nil
	}
	p := *s.state.Pending
	return &p
}

// Answer returns the recorded option for quiz card i.
func (s *Session) Answer(i int) (int, bool) {
	opt, ok := s.state.Answers[i]
	return opt, ok
}

// Choice returns the tag recorded under store.
func (s *Session) Choice(store string) (string, bool) {
	tag, ok := s.state.Choices[store]
	return tag, ok
}

// AtEnd reports whether the session is on the last card.
func (s *Session) AtEnd() bool { return s.state.Index == len(s.tutorial.Cards)-1 }

// IsTerminal reports whether the session reached a closing celebration card.
func (s *Session) IsTerminal() bool {
	return s.AtEnd() && s.Card().Type == domain.CardCelebration
}

// CanAdvance reports whether Advance would move forward.
func (s *Session) CanAdvance() bool {
	if s.AtEnd() {
		return false
	}
	if s.Card().Type == domain.CardQuiz {
		_, answered := s.state.Answers[s.state.Index]
		return answered
	}
	return true
}

// Advance moves to the next card. It reports false, leaving the session
// untouched, on the last card or on an unanswered quiz.
func (s *Session) Advance() bool {
	if !s.CanAdvance() {
		return false
	}
	s.moveTo(s.state.Index + 1)
	return true
}

// GoBack moves to the previous card. It reports false on the first card.
func (s *Session) GoBack() bool {
	if s.state.Index == 0 {
		return false
	}
	s.moveTo(s.state.Index - 1)
	return true
}

// JumpTo moves directly to card j, bypassing quiz gating.
func (s *Session) JumpTo(j int) error {
	if j < 0 || j >= len(s.tutorial.Cards) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, j, len(s.tutorial.Cards))
	}
	s.moveTo(j)
	return nil
}

// AnswerQuiz records the selected option for quiz card i. Only the first
// answer per card is kept; later calls report false and change nothing.
// Answering never moves the session.
func (s *Session) AnswerQuiz(i, option int) (bool, error) {
	if i < 0 || i >= len(s.tutorial.Cards) {
		return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	card := &s.tutorial.Cards[i]
	if card.Type != domain.CardQuiz {
		return false, fmt.Errorf("%w: card %d is %s", ErrNotQuiz, i, card.Type)
	}
	if option < 0 || option >= len(card.Options) {
		return false, fmt.Errorf("%w: %d of %d", ErrOptionOutOfRange, option, len(card.Options))
	}
	if _, done := s.state.Answers[i]; done {
		return false, nil
	}
	if s.state.Answers == nil {
		s.state.Answers = make(map[int]int)
	}
	s.state.Answers[i] = option

	if s.hooks.OnQuizAnswer != nil {
		s.hooks.OnQuizAnswer(s.ctx, &domain.QuizEvent{
			EventBase: s.base(domain.EventQuizAnswer),
			Index:     i,
			Option:    option,
			Correct:   card.Options[option].Correct,
		})
	}
	return true, nil
}

// MakeChoice records tag under store, replacing any earlier value, and
// schedules an advance. The returned Pending must be handed back to Resolve
// once its delay has elapsed. On the last card nothing is scheduled.
func (s *Session) MakeChoice(store, tag string) (*Pending, error) {
	if store == "" || tag == "" {
		return nil, ErrEmptyChoice
	}
	if s.state.Choices == nil {
		s.state.Choices = make(map[string]string)
	}
	s.state.Choices[store] = tag

	if s.hooks.OnChoice != nil {
		s.hooks.OnChoice(s.ctx, &domain.ChoiceEvent{
			EventBase: s.base(domain.EventChoice),
			Store:     store,
			Tag:       tag,
		})
	}

	if s.AtEnd() {
		s.state.Pending = nil
		return nil, nil
	}
	s.state.Seq++
	p := Pending{Step: s.state.Index, Seq: s.state.Seq, Delay: s.delay}
	s.state.Pending = &p
	return &p, nil
}

// Resolve fires a pending advance. It reports false when the advance was
// cancelled, superseded by a newer choice, or the session has moved since.
func (s *Session) Resolve(p Pending) bool {
	cur := s.state.Pending
	if cur == nil || cur.Seq != p.Seq || cur.Step != p.Step || s.state.Index != p.Step {
		return false
	}
	s.state.Pending = nil
	return s.Advance()
}

// CancelPending drops any scheduled advance.
func (s *Session) CancelPending() {
	s.state.Pending = nil
}

// SetModality switches the current card's presentation.
func (s *Session) SetModality(m domain.Modality) error {
	if !s.Card().Modalities.Has(m) {
		return fmt.Errorf("%w: %s on card %d", ErrModalityNotOffered, m, s.state.Index)
	}
	s.state.Modality = m
	return nil
}

// Stats summarizes quiz and choice progress.
func (s *Session) Stats() Stats {
	st := Stats{
		Cards:    len(s.tutorial.Cards),
		Quizzes:  s.tutorial.QuizCount(),
		Answered: len(s.state.Answers),
		Choices:  len(s.state.Choices),
	}
	for i, opt := range s.state.Answers {
		if s.tutorial.Cards[i].CorrectOption() == opt {
			st.Correct++
		}
	}
	return st
}

// Enter emits the card-enter event for the current card.
// Hosts call it once after New; later moves emit it on their own.
func (s *Session) Enter() {
	if s.hooks.OnCardEnter == nil {
		return
	}
	s.hooks.OnCardEnter(s.ctx, &domain.CardEvent{
		EventBase: s.base(domain.EventCardEnter),
		Index:     s.state.Index,
		CardType:  s.Card().Type,
	})
}

func (s *Session) moveTo(i int) {
	s.state.Pending = nil
	s.state.Index = i
	s.state.Modality = s.defaultModality()
	s.Enter()
}

func (s *Session) defaultModality() domain.Modality {
	offered := s.Card().Modalities.Offered()
	if len(offered) == 0 {
		return ""
	}
	return offered[0]
}

func (s *Session) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:  s.now(),
		Type:       t,
		TutorialID: s.tutorial.ID,
	}
}
