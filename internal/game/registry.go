// Package game keeps the in-memory state of every active room: which players
// are in it, where they stand and what hat they wear. Nothing is persisted;
// a room exists exactly as long as it has players.
package game

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"hatroom/internal/palette"
)

// PlayerState is the per-room view of a player as sent to clients.
type PlayerState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Name   string  `json:"name"`
	Folder string  `json:"folder"`
	Color  string  `json:"color"`
}

// Meta is the subset of player data the avatar routes need. It lives in a TTL
// cache rather than the room map so a short reconnect does not break avatar
// URLs that are already in the page.
type Meta struct {
	Name     string
	Folder   string
	ColorHex string
}

// RoomInfo is the read-only listing served by the rooms API.
type RoomInfo struct {
	Name    string                 `json:"name"`
	Players map[string]PlayerState `json:"players"`
}

// Update carries the optional fields of a position update. Nil fields keep
// the current value.
type Update struct {
	X      *float64
	Y      *float64
	Name   *string
	Folder *string
}

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*PlayerState
	meta  *cache.Cache
}

func NewRegistry(metaTTL time.Duration) *Registry {
	return &Registry{
		rooms: make(map[string]map[string]*PlayerState),
		meta:  cache.New(metaTTL, 2*metaTTL),
	}
}

// Join places the player in the room, creating the room on first use.
func (r *Registry) Join(room, playerID string, state PlayerState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	players, ok := r.rooms[room]
	if !ok {
		players = make(map[string]*PlayerState)
		r.rooms[room] = players
	}
	s := state
	players[playerID] = &s
	r.meta.Set(playerID, Meta{Name: s.Name, Folder: s.Folder, ColorHex: s.Color}, cache.DefaultExpiration)
}

// Snapshot copies the current state of a room. Unknown rooms yield an empty
// map.
func (r *Registry) Snapshot(room string) map[string]PlayerState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := r.rooms[room]
	out := make(map[string]PlayerState, len(players))
	for id, p := range players {
		out[id] = *p
	}
	return out
}

// Move applies a position update to a player. Name updates are trimmed and
// ignored when empty; folder updates are ignored unless the folder is in the
// palette. Returns the updated state and whether the player exists.
func (r *Registry) Move(room, playerID string, upd Update) (PlayerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rooms[room][playerID]
	if !ok {
		return PlayerState{}, false
	}
	if upd.X != nil {
		p.X = *upd.X
	}
	if upd.Y != nil {
		p.Y = *upd.Y
	}
	if upd.Name != nil {
		if name := strings.TrimSpace(*upd.Name); name != "" {
			p.Name = name
		}
	}
	if upd.Folder != nil {
		if hex, ok := palette.Hex(*upd.Folder); ok {
			p.Folder = *upd.Folder
			p.Color = hex
		}
	}
	r.meta.Set(playerID, Meta{Name: p.Name, Folder: p.Folder, ColorHex: p.Color}, cache.DefaultExpiration)
	return *p, true
}

// Remove takes the player out of the room and drops the room once it is
// empty. Returns whether the player was present.
func (r *Registry) Remove(room, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	players, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, ok := players[playerID]; !ok {
		return false
	}
	delete(players, playerID)
	r.meta.Delete(playerID)
	if len(players) == 0 {
		delete(r.rooms, room)
	}
	return true
}

// Meta looks up the cached metadata for a player id.
func (r *Registry) Meta(playerID string) (Meta, bool) {
	if v, ok := r.meta.Get(playerID); ok {
		return v.(Meta), true
	}
	return Meta{}, false
}

// Rooms lists all rooms sorted by name.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(r.rooms))
	for name, players := range r.rooms {
		copied := make(map[string]PlayerState, len(players))
		for id, p := range players {
			copied[id] = *p
		}
		infos = append(infos, RoomInfo{Name: name, Players: copied})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Counts reports the number of rooms and players for metrics.
func (r *Registry) Counts() (rooms int, players int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms = len(r.rooms)
	for _, p := range r.rooms {
		players += len(p)
	}
	return rooms, players
}

// MetaCount reports the size of the metadata cache for metrics.
func (r *Registry) MetaCount() int {
	return r.meta.ItemCount()
}
