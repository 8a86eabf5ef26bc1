// Package realtime moves player state between browsers over websockets.
// Each connection carries at most one player; events are JSON envelopes with
// an event name and a payload.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"hatroom/internal/common"
	"hatroom/internal/game"
	"hatroom/internal/palette"
)

const defaultPlayerName = "Player"

const (
	EventJoin      = "join"
	EventPosUpdate = "pos_update"
	EventLeave     = "leave"

	EventJoined       = "joined"
	EventPlayerJoined = "player_joined"
	EventPlayerMoved  = "player_moved"
	EventPlayerLeft   = "player_left"
)

var (
	websocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hatroom",
			Name:      "websocket_connections",
			Help:      "The count of websocket connections",
		})

	activeRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hatroom",
			Name:      "rooms",
			Help:      "The amount of rooms with at least one player",
		})

	playersOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hatroom",
			Name:      "players",
			Help:      "The amount of players across all rooms",
		})

	metaCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hatroom",
			Name:      "player_meta_cache",
			Help:      "The amount of entries in the player metadata cache",
		})
)

func init() {
	prometheus.MustRegister(websocketConnections)
	prometheus.MustRegister(activeRooms)
	prometheus.MustRegister(playersOnline)
	prometheus.MustRegister(metaCacheSize)
}

// Conf carries the websocket buffer sizes.
type Conf struct {
	ReadBuffer  int
	WriteBuffer int
}

type Gateway struct {
	registry *game.Registry
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	members map[string]map[*client]struct{}
}

func NewGateway(registry *game.Registry, conf Conf) *Gateway {
	return &Gateway{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  conf.ReadBuffer,
			WriteBufferSize: conf.WriteBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		members: make(map[string]map[*client]struct{}),
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// room and playerID are owned by the connection's read loop.
	room     string
	playerID string
}

func (c *client) send(event string, data any) error {
	payload, err := json.Marshal(outbound{Event: event, Data: data})
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinPayload struct {
	Room  string   `json:"room"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type movePayload struct {
	Room         string   `json:"room"`
	PlayerID     string   `json:"player_id"`
	X            *float64 `json:"x"`
	Y            *float64 `json:"y"`
	Name         *string  `json:"name"`
	Folder       *string  `json:"folder"`
	FacingRight  *bool    `json:"facingRight"`
	CurrentFrame *string  `json:"currentFrame"`
}

type leavePayload struct {
	Room     string `json:"room"`
	PlayerID string `json:"player_id"`
}

// HandleSocket upgrades the request and runs the connection's read loop until
// the peer goes away. A read error counts as a disconnect and cleans up the
// player exactly like an explicit leave.
func (g *Gateway) HandleSocket(w http.ResponseWriter, r *http.Request) {
	clientIp := common.GetClientIp(r.Context())

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: client_ip=%s err=%v", clientIp, err)
		return
	}
	defer conn.Close()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	c := &client{conn: conn}
	defer g.disconnect(c)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("websocket bad message: client_ip=%s err=%v", clientIp, err)
			continue
		}

		switch env.Event {
		case EventJoin:
			g.handleJoin(c, env.Data)
		case EventPosUpdate:
			g.handleMove(c, env.Data)
		case EventLeave:
			g.handleLeave(c, env.Data)
		default:
			log.Printf("websocket unknown event: client_ip=%s event=%q", clientIp, env.Event)
		}
	}
}

func (g *Gateway) handleJoin(c *client, raw json.RawMessage) {
	if c.playerID != "" {
		// one player per connection
		return
	}
	var p joinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Printf("join payload invalid: err=%v", err)
		return
	}
	room := strings.TrimSpace(p.Room)
	if room == "" {
		return
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = defaultPlayerName
	}
	folder, hex := palette.Normalize(strings.TrimSpace(p.Color))

	var x, y float64
	if p.X != nil {
		x = *p.X
	}
	if p.Y != nil {
		y = *p.Y
	}

	playerID := uuid.NewString()
	g.registry.Join(room, playerID, game.PlayerState{X: x, Y: y, Name: name, Folder: folder, Color: hex})

	c.room = room
	c.playerID = playerID
	g.mu.Lock()
	peers := g.members[room]
	if peers == nil {
		peers = make(map[*client]struct{})
		g.members[room] = peers
	}
	peers[c] = struct{}{}
	g.mu.Unlock()
	g.updateGauges()

	if err := c.send(EventJoined, map[string]any{
		"player_id": playerID,
		"players":   g.registry.Snapshot(room),
	}); err != nil {
		log.Printf("send joined failed: room=%s player=%s err=%v", room, playerID, err)
	}

	g.broadcast(room, c, EventPlayerJoined, map[string]any{
		"player_id": playerID,
		"x":         x,
		"y":         y,
		"name":      name,
		"folder":    folder,
		"color":     hex,
	})
	log.Printf("player joined: room=%s player=%s name=%q folder=%s", room, playerID, name, folder)
}

func (g *Gateway) handleMove(c *client, raw json.RawMessage) {
	var p movePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if p.Room == "" || p.PlayerID == "" {
		return
	}

	state, ok := g.registry.Move(p.Room, p.PlayerID, game.Update{
		X:      p.X,
		Y:      p.Y,
		Name:   p.Name,
		Folder: p.Folder,
	})
	if !ok {
		return
	}

	g.broadcast(p.Room, c, EventPlayerMoved, map[string]any{
		"player_id":    p.PlayerID,
		"x":            state.X,
		"y":            state.Y,
		"facingRight":  p.FacingRight,
		"currentFrame": p.CurrentFrame,
	})
}

func (g *Gateway) handleLeave(c *client, raw json.RawMessage) {
	var p leavePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if p.Room == "" || p.PlayerID == "" {
		return
	}
	if !g.registry.Remove(p.Room, p.PlayerID) {
		return
	}

	if c.playerID == p.PlayerID {
		g.detach(c)
		c.room = ""
		c.playerID = ""
	}
	g.updateGauges()
	g.broadcast(p.Room, c, EventPlayerLeft, map[string]any{"player_id": p.PlayerID})
	log.Printf("player left: room=%s player=%s", p.Room, p.PlayerID)
}

// disconnect cleans up after the read loop ends.
func (g *Gateway) disconnect(c *client) {
	g.detach(c)
	if c.playerID == "" {
		return
	}
	room, playerID := c.room, c.playerID
	if g.registry.Remove(room, playerID) {
		g.updateGauges()
		g.broadcast(room, nil, EventPlayerLeft, map[string]any{"player_id": playerID})
		log.Printf("player disconnected: room=%s player=%s", room, playerID)
	}
}

func (g *Gateway) detach(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if peers, ok := g.members[c.room]; ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(g.members, c.room)
		}
	}
}

// broadcast sends the event to every member of the room except skip.
func (g *Gateway) broadcast(room string, skip *client, event string, data any) {
	g.mu.RLock()
	targets := make([]*client, 0, len(g.members[room]))
	for peer := range g.members[room] {
		if peer == skip {
			continue
		}
		targets = append(targets, peer)
	}
	g.mu.RUnlock()

	for _, peer := range targets {
		if err := peer.send(event, data); err != nil {
			// the peer's read loop notices the closed conn and cleans up
			peer.conn.Close()
		}
	}
}

func (g *Gateway) updateGauges() {
	rooms, players := g.registry.Counts()
	activeRooms.Set(float64(rooms))
	playersOnline.Set(float64(players))
	metaCacheSize.Set(float64(g.registry.MetaCount()))
}
