package playback

import (
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/richtext"
)

// View is what a host shows after each step: the next state to hand back,
// the current card with its markup sanitized, and the navigation flags.
type View struct {
	State         State           `json:"state"`
	Index         int             `json:"index"`
	Total         int             `json:"total"`
	Card          domain.Card     `json:"card"`
	Modality      domain.Modality `json:"modality,omitempty"`
	CanAdvance    bool            `json:"canAdvance"`
	AtEnd         bool            `json:"atEnd"`
	Terminal      bool            `json:"terminal"`
	AutoAdvanceMs int64           `json:"autoAdvanceMs,omitempty"`
	Stats         *Stats          `json:"stats,omitempty"`
}

// View snapshots the session. pending is the value returned by the last
// MakeChoice or Apply, if any.
func (s *Session) View(pending *Pending) (*View, error) {
	copied, err := s.tutorial.Clone()
	if err != nil {
		return nil, err
	}
	card := copied.Cards[s.state.Index]
	richtext.SanitizeCard(&card)

	v := &View{
		State:      s.State(),
		Index:      s.state.Index,
		Total:      len(s.tutorial.Cards),
		Card:       card,
		Modality:   s.state.Modality,
		CanAdvance: s.CanAdvance(),
		AtEnd:      s.AtEnd(),
		Terminal:   s.IsTerminal(),
	}
	if pending != nil {
		v.AutoAdvanceMs = pending.Delay.Milliseconds()
	}
	if card.Type == domain.CardCelebration && card.Stats {
		st := s.Stats()
		v.Stats = &st
	}
	return v, nil
}
