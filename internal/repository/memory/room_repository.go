package memory

import (
	"time"

	"video-consulta-sync/pkg/store"

	"github.com/patrickmn/go-cache"
)

// RoomRepository keeps live room state in memory with a TTL so abandoned
// rooms expire without explicit cleanup.
type RoomRepository struct {
	cache *cache.Cache
}

func NewRoomRepository(ttl time.Duration) *RoomRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &RoomRepository{
		cache: c,
	}
}

func (r *RoomRepository) Save(room *store.Room) {
	r.cache.Set(room.ID, room, cache.DefaultExpiration)
}

func (r *RoomRepository) Get(roomID string) (*store.Room, bool) {
	if x, found := r.cache.Get(roomID); found {
		return x.(*store.Room), true
	}
	return nil, false
}

// GetOrCreate returns the room, creating it on first touch.
func (r *RoomRepository) GetOrCreate(roomID, patientID string) *store.Room {
	if room, ok := r.Get(roomID); ok {
		if patientID != "" && room.PatientID == "" {
			room.PatientID = patientID
			r.Save(room)
		}
		return room
	}
	room := store.NewRoom(roomID, patientID)
	r.Save(room)
	return room
}

func (r *RoomRepository) Delete(roomID string) {
	r.cache.Delete(roomID)
}

func (r *RoomRepository) Count() int {
	return r.cache.ItemCount()
}
