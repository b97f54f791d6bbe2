package playback

import (
	"fmt"

	"github.com/aretw0/viben/pkg/domain"
)

// EventType names a serialized playback input.
type EventType string

const (
	EventAdvance  EventType = "advance"
	EventBack     EventType = "back"
	EventJump     EventType = "jump"
	EventAnswer   EventType = "answer"
	EventChoice   EventType = "choice"
	EventModality EventType = "modality"
	EventResolve  EventType = "resolve"
)

// Event is a host-neutral playback input, used by the HTTP and MCP adapters.
type Event struct {
	Type     EventType       `json:"type"`
	Index    *int            `json:"index,omitempty"`
	Option   int             `json:"option,omitempty"`
	Store    string          `json:"store,omitempty"`
	Tag      string          `json:"tag,omitempty"`
	Modality domain.Modality `json:"modality,omitempty"`
	Seq      uint64          `json:"seq,omitempty"`
}

// Apply dispatches ev to the matching session operation.
// Gated or no-op moves are not errors; the returned Pending is set only for choices.
//
// An answer event without an explicit index targets the current card.
// A resolve event resolves the pending advance carrying the given Seq.
func (s *Session) Apply(ev Event) (*Pending, error) {
	switch ev.Type {
	case EventAdvance:
		s.Advance()
	case EventBack:
		s.GoBack()
	case EventJump:
		if ev.Index == nil {
			return nil, fmt.Errorf("%w: jump without index", ErrIndexOutOfRange)
		}
		return nil, s.JumpTo(*ev.Index)
	case EventAnswer:
		idx := s.state.Index
		if ev.Index != nil {
			idx = *ev.Index
		}
		_, err := s.AnswerQuiz(idx, ev.Option)
		return nil, err
	case EventChoice:
		store := ev.Store
		if store == "" {
			store = s.Card().Store
		}
		return s.MakeChoice(store, ev.Tag)
	case EventModality:
		return nil, s.SetModality(ev.Modality)
	case EventResolve:
		if s.state.Pending != nil && s.state.Pending.Seq == ev.Seq {
			s.Resolve(*s.state.Pending)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil, nil
}
