package form

import (
	"testing"
	"time"

	"github.com/localnerve/archhub/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExpiresIdleSessions(t *testing.T) {
	meta, err := Load(data.FormMetadataJSON)
	require.NoError(t, err)

	r := NewRegistry(&Engine{Meta: meta}, time.Minute)
	s := r.Open("tester", nil)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "tester", s.Owner())

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryClose(t *testing.T) {
	meta, err := Load(data.FormMetadataJSON)
	require.NoError(t, err)

	r := NewRegistry(&Engine{Meta: meta}, 0)
	a := r.Open("a", nil)
	b := r.Open("b", nil)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, r.Len())

	r.Close(a.ID())
	_, err = r.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(b.ID())
	assert.NoError(t, err)
}
