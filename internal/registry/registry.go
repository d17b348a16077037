package registry

import (
	"sync"

	"github.com/xusaitong/gomoku-backend/internal/entity"
)

// Registry owns every live room in the process. It is injected into the
// components that need it instead of living as a package-level global, so
// tests and multi-instance deployments can each hold their own.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*entity.Room),
	}
}

// GetOrCreate returns the room registered under roomID, creating it with
// the given identity as sole player if it does not exist. The lookup and
// insert are atomic, so a join race on a fresh roomID yields one room.
func (that *Registry) GetOrCreate(roomID, creatorID string) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[roomID]; ok {
		return room, false
	}

	room := entity.NewRoom(roomID, creatorID)
	that.rooms[roomID] = room

	return room, true
}

// Get looks a room up without creating it.
func (that *Registry) Get(roomID string) (*entity.Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[roomID]

	return room, ok
}

// Delete removes a room. Called only once its player slots are empty.
func (that *Registry) Delete(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, roomID)
}

// DeleteIfEmpty removes the room only while its player slots are still
// empty, with the registry write lock held throughout. A join racing the
// teardown either repopulates the room first (the room stays registered)
// or arrives after deletion and creates a fresh one. Lock order is
// registry then room; nothing takes them in the other order.
func (that *Registry) DeleteIfEmpty(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return false
	}

	room.Lock()
	empty := len(room.Players) == 0
	room.Unlock()

	if !empty {
		return false
	}

	delete(that.rooms, roomID)

	return true
}

// ForEach calls fn for every registered room. The room pointers are
// collected first and fn runs outside the registry lock, so fn may take
// room locks without ordering against Delete.
func (that *Registry) ForEach(fn func(room *entity.Room)) {
	that.mu.RLock()
	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}
	that.mu.RUnlock()

	for _, room := range rooms {
		fn(room)
	}
}

// Len reports the number of live rooms.
func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
