package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/viben/pkg/domain"
)

// DefaultAutoAdvance is the delay between recording a choice and moving on.
const DefaultAutoAdvance = 400 * time.Millisecond

var (
	ErrEmptyTutorial      = errors.New("tutorial has no cards")
	ErrIndexOutOfRange    = errors.New("card index out of range")
	ErrNotQuiz            = errors.New("card is not a quiz")
	ErrOptionOutOfRange   = errors.New("quiz option out of range")
	ErrModalityNotOffered = errors.New("modality not offered by card")
	ErrEmptyChoice        = errors.New("choice store and tag must be set")
	ErrUnknownEvent       = errors.New("unknown playback event")
)

// State is the serializable snapshot of a session.
// Stateless hosts hand it back on every request to continue where they left off.
type State struct {
	Index    int               `json:"index"`
	Answers  map[int]int       `json:"answers,omitempty"`
	Choices  map[string]string `json:"choices,omitempty"`
	Modality domain.Modality   `json:"modality,omitempty"`
	Pending  *Pending          `json:"pending,omitempty"`
	Seq      uint64            `json:"seq,omitempty"`
}

// Pending is a scheduled advance tagged with the step it was scheduled against.
type Pending struct {
	Step  int           `json:"step"`
	Seq   uint64        `json:"seq"`
	Delay time.Duration `json:"delay"`
}

func (s State) clone() State {
	out := s
	out.Answers = make(map[int]int, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	out.Choices = make(map[string]string, len(s.Choices))
	for k, v := range s.Choices {
		out.Choices[k] = v
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return out
}

// check verifies the snapshot is consistent with the tutorial it is applied to.
func (s State) check(t *domain.Tutorial) error {
	n := len(t.Cards)
	if s.Index < 0 || s.Index >= n {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, s.Index, n)
	}
	for i, opt := range s.Answers {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: answer for card %d", ErrIndexOutOfRange, i)
		}
		card := &t.Cards[i]
		if card.Type != domain.CardQuiz {
			return fmt.Errorf("%w: answer for card %d", ErrNotQuiz, i)
		}
		if opt < 0 || opt >= len(card.Options) {
			return fmt.Errorf("%w: card %d option %d", ErrOptionOutOfRange, i, opt)
		}
	}
	if s.Modality != "" && !t.Cards[s.Index].Modalities.Has(s.Modality) {
		return fmt.Errorf("%w: %s", ErrModalityNotOffered, s.Modality)
	}
	return nil
}

// Stats aggregates learner progress for celebration cards.
type Stats struct {
	Cards    int `json:"cards"`
	Quizzes  int `json:"quizzes"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Choices  int `json:"choices"`
}
