package changefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type likeRow struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

func TestNewEvent(t *testing.T) {
	ins, err := NewEvent(TableLikes, Insert, likeRow{PostID: "p1", UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, ins.New)
	assert.Empty(t, ins.Old)
	assert.False(t, ins.CommitTimestamp.IsZero())

	del, err := NewEvent(TableLikes, Delete, likeRow{PostID: "p1", UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, del.New)
	assert.NotEmpty(t, del.Old)

	var row likeRow
	require.NoError(t, del.Decode(&row))
	assert.Equal(t, likeRow{PostID: "p1", UserID: "u1"}, row)
}

func TestEventDecode_NoRow(t *testing.T) {
	var row likeRow
	err := Event{Table: TableLikes, Type: Update}.Decode(&row)
	assert.Error(t, err)
}
