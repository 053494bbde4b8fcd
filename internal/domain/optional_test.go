package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTracksPresence(t *testing.T) {
	var body struct {
		Note  Optional[*string] `json:"note"`
		Floor Optional[*int]    `json:"floor"`
		Name  Optional[string]  `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"note": null, "floor": 3}`), &body))

	assert.True(t, body.Note.Set)
	assert.Nil(t, body.Note.Value)
	assert.True(t, body.Floor.Set)
	assert.Equal(t, 3, *body.Floor.Value)
	assert.False(t, body.Name.Set)

	patch := RoomPatch{Note: body.Note, Floor: body.Floor}
	cols := patch.Columns()
	assert.Len(t, cols, 2)
	assert.Contains(t, cols, "note")
	assert.NotContains(t, cols, "room_no")
}

func TestOptionalDate(t *testing.T) {
	d, ok := OptionalDate(Optional[*string]{})
	assert.True(t, ok)
	assert.False(t, d.Set)

	d, ok = OptionalDate(Some[*string](nil))
	assert.True(t, ok)
	assert.True(t, d.Set)
	assert.Nil(t, d.Value)

	s := "2025-02-28"
	d, ok = OptionalDate(Some(&s))
	require.True(t, ok)
	require.NotNil(t, d.Value)
	assert.Equal(t, "2025-02-28", time.Time(*d.Value).Format(DateLayout))

	bad := "2025-02-30"
	_, ok = OptionalDate(Some(&bad))
	assert.False(t, ok)
}
