package playback

import (
	"testing"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	tut := fixture()
	tut.Cards[0].Body = `<em>hi</em><img src=x onerror="boom()">`
	s, err := New(tut, WithAutoAdvance(time.Second))
	require.NoError(t, err)

	v, err := s.View(nil)
	require.NoError(t, err)
	assert.Equal(t, "<em>hi</em>", v.Card.Body)
	assert.Equal(t, `<em>hi</em><img src=x onerror="boom()">`, tut.Cards[0].Body, "tutorial is not modified")
	assert.Equal(t, 5, v.Total)
	assert.True(t, v.CanAdvance)
	assert.Zero(t, v.AutoAdvanceMs)
	assert.Nil(t, v.Stats)

	require.NoError(t, s.JumpTo(3))
	p, err := s.MakeChoice("pathStore", "frontend")
	require.NoError(t, err)
	v, err = s.View(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v.AutoAdvanceMs)
	require.NotNil(t, v.State.Pending)

	require.NoError(t, s.JumpTo(4))
	v, err = s.View(nil)
	require.NoError(t, err)
	assert.True(t, v.Terminal)
	require.NotNil(t, v.Stats)
	assert.Equal(t, Stats{Cards: 5, Quizzes: 1, Choices: 1}, *v.Stats)
	assert.Equal(t, domain.CardCelebration, v.Card.Type)
}
