package content

import (
	"errors"
	"testing"

	"github.com/jwebster45206/adventure-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlackwoodManor(t *testing.T) {
	w, err := BlackwoodManor()
	require.NoError(t, err)

	assert.Equal(t, "blackwood_manor", w.ID)
	assert.Equal(t, "foyer", w.StartRoom)
	for _, id := range []string{"foyer", "library", "study", "basement", "dining_room", "secret_chamber"} {
		assert.Contains(t, w.Rooms, id)
	}
	assert.Len(t, w.Books, 6)
	assert.NoError(t, w.Validate())
}

func TestBlackwoodManor_Shared(t *testing.T) {
	a, err := BlackwoodManor()
	require.NoError(t, err)
	b, err := BlackwoodManor()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("haunted_lighthouse")
	var nf *world.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestIDs(t *testing.T) {
	ids, err := IDs()
	require.NoError(t, err)
	assert.Contains(t, ids, DefaultWorld)
}
