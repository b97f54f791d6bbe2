package playback

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int { return &i }

func TestApply(t *testing.T) {
	s := newSession(t)

	_, err := s.Apply(Event{Type: EventAdvance})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index())

	_, err = s.Apply(Event{Type: EventModality, Modality: domain.ModalityWatch})
	require.NoError(t, err)
	assert.Equal(t, domain.ModalityWatch, s.Modality())

	_, err = s.Apply(Event{Type: EventJump, Index: intp(2)})
	require.NoError(t, err)

	_, err = s.Apply(Event{Type: EventAdvance})
	require.NoError(t, err, "gated advance is not an error")
	assert.Equal(t, 2, s.Index())

	_, err = s.Apply(Event{Type: EventAnswer, Option: 1})
	require.NoError(t, err)
	opt, ok := s.Answer(2)
	require.True(t, ok)
	assert.Equal(t, 1, opt)

	_, err = s.Apply(Event{Type: EventAdvance})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Index())

	p, err := s.Apply(Event{Type: EventChoice, Tag: "backend"})
	require.NoError(t, err)
	require.NotNil(t, p)
	tag, _ := s.Choice("pathStore")
	assert.Equal(t, "backend", tag, "store defaults to the card's store key")

	_, err = s.Apply(Event{Type: EventResolve, Seq: p.Seq + 1})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Index(), "unknown seq is ignored")

	_, err = s.Apply(Event{Type: EventResolve, Seq: p.Seq})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Index())

	_, err = s.Apply(Event{Type: EventBack})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Index())
}

func TestApply_Errors(t *testing.T) {
	s := newSession(t)

	_, err := s.Apply(Event{Type: "dance"})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = s.Apply(Event{Type: EventJump})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Apply(Event{Type: EventAnswer, Index: intp(2), Option: 9})
	assert.ErrorIs(t, err, ErrOptionOutOfRange)
}

func TestEvent_JSON(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"jump","index":0}`), &ev))
	require.NotNil(t, ev.Index)
	assert.Equal(t, 0, *ev.Index)
	assert.Equal(t, EventJump, ev.Type)
}
