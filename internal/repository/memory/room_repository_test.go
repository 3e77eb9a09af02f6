package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-consulta-sync/pkg/store"
)

func TestGetOrCreateFirstTouch(t *testing.T) {
	repo := NewRoomRepository(time.Hour)

	room := repo.GetOrCreate("room-1", "pat-1")
	require.NotNil(t, room)
	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, "pat-1", room.PatientID)
	assert.Equal(t, store.AgentIdle, room.AgentState)
	assert.NotNil(t, room.AudioStreaming)

	again := repo.GetOrCreate("room-1", "")
	assert.Same(t, room, again)
	assert.Equal(t, 1, repo.Count())
}

func TestGetOrCreateBackfillsPatientID(t *testing.T) {
	repo := NewRoomRepository(time.Hour)

	// Paciente connects first without an id; the medico side supplies it.
	repo.GetOrCreate("room-2", "")
	room := repo.GetOrCreate("room-2", "pat-9")
	assert.Equal(t, "pat-9", room.PatientID)

	// A later differing id does not overwrite.
	room = repo.GetOrCreate("room-2", "pat-other")
	assert.Equal(t, "pat-9", room.PatientID)
}

func TestSaveAndDelete(t *testing.T) {
	repo := NewRoomRepository(time.Hour)

	room := store.NewRoom("room-3", "pat-3")
	room.AgentState = store.AgentListening
	repo.Save(room)

	got, ok := repo.Get("room-3")
	require.True(t, ok)
	assert.Equal(t, store.AgentListening, got.AgentState)

	repo.Delete("room-3")
	_, ok = repo.Get("room-3")
	assert.False(t, ok)
	assert.Zero(t, repo.Count())
}
