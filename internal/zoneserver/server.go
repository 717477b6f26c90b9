// Package zoneserver implements a self-contained Emberveil zone server
// for local development. It speaks the same websocket protocol as the
// hosted backend: clients join a zone, exchange messages and emotes,
// move between zones, and receive presence and usage frames. State
// lives in memory and vanishes with the process.
package zoneserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 50
	defaultUsageLimit  = 100
	shutdownGrace      = 3 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local development server; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Options configures a dev zone server.
type Options struct {
	// Token, when set, is the only access token accepted. When empty
	// any non-empty token passes.
	Token string

	// NPC enables the resident greeter.
	NPC bool

	// RecentLimit caps the per-zone event ring replayed to joiners.
	RecentLimit int

	// UsageLimit is the interaction quota reported by usage frames.
	UsageLimit int

	Logger *zap.Logger
}

// Server is an in-memory zone server suitable for trying the client
// without an Emberveil account.
type Server struct {
	opts  Options
	log   *zap.Logger
	hub   *hub
	npc   *greeter
	start time.Time
}

func New(opts Options) *Server {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.UsageLimit <= 0 {
		opts.UsageLimit = defaultUsageLimit
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		opts:  opts,
		log:   log,
		hub:   newHub(opts.RecentLimit),
		start: time.Now(),
	}
	if opts.NPC {
		s.npc = newGreeter(s)
	}
	return s
}

// Handler returns the HTTP routes: the zone websocket endpoint and a
// health probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/zones/", s.handleZoneWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("zone server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleZoneWS(w http.ResponseWriter, r *http.Request) {
	zoneID := strings.TrimPrefix(r.URL.Path, "/ws/zones/")
	if zoneID == "" || strings.Contains(zoneID, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	characterID := q.Get("character_id")
	if characterID == "" {
		http.Error(w, "character_id required", http.StatusBadRequest)
		return
	}
	if !s.authorize(q.Get("access_token")) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	name := q.Get("name")
	if name == "" {
		name = "Wanderer-" + shortID(characterID)
	}

	c := newClient(conn, characterID, name)
	z := s.hub.zone(zoneID)
	s.join(z, c)
	go s.readLoop(z, c)
}

func (s *Server) authorize(token string) bool {
	if s.opts.Token != "" {
		return token == s.opts.Token
	}
	return token != ""
}

// join adds the client to a zone, replays the zone's recent events to
// it, and announces it to everyone already there.
func (s *Server) join(z *zone, c *client) {
	z.add(c)

	if recents := z.recentEvents(); len(recents) > 0 {
		s.sendTo(c, recentMessages{Type: frameRecentMessages, Messages: recents})
	}

	s.broadcast(z, gameEvent{
		Type:          frameGameEvent,
		EventType:     evCharacterEntered,
		CharacterID:   c.characterID,
		CharacterName: c.name,
	}, c)

	s.log.Info("character joined",
		zap.String("zone", z.id),
		zap.String("character", c.characterID),
		zap.String("name", c.name))

	if s.npc != nil {
		s.npc.welcome(z, c.name)
	}
}

// drop removes the client, announces the departure, and stops its
// write pump. Safe to call from both the read loop and the slow-client
// path; only the first caller acts.
func (s *Server) drop(z *zone, c *client, reason string) {
	if !z.remove(c) {
		return
	}
	c.stop()

	s.broadcast(z, gameEvent{
		Type:          frameGameEvent,
		EventType:     evCharacterLeft,
		CharacterID:   c.characterID,
		CharacterName: c.name,
	}, nil)

	s.log.Info("character left",
		zap.String("zone", z.id),
		zap.String("character", c.characterID),
		zap.String("reason", reason))
}

func (s *Server) readLoop(z *zone, c *client) {
	defer func() { s.drop(z, c, "disconnect") }()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		z = s.dispatch(z, c, data)
	}
}

// dispatch handles one inbound frame and returns the client's current
// zone, which changes on movement.
func (s *Server) dispatch(z *zone, c *client, data []byte) *zone {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.sendTo(c, errorNotice{Type: frameError, Message: "malformed frame"})
		return z
	}

	switch cmd.Type {
	case cmdMessage:
		c.interactions++
		ev := gameEvent{
			Type:       frameGameEvent,
			EventType:  evMessage,
			SenderID:   c.characterID,
			SenderName: c.name,
			Content:    cmd.Content,
		}
		z.record(ev)
		s.broadcast(z, ev, nil)

	case cmdEmote:
		ev := gameEvent{
			Type:       frameGameEvent,
			EventType:  evEmote,
			SenderID:   c.characterID,
			SenderName: c.name,
			Content:    cmd.Content,
		}
		z.record(ev)
		s.broadcast(z, ev, nil)

	case cmdInteraction:
		c.interactions++
		s.broadcast(z, gameEvent{
			Type:       frameGameEvent,
			EventType:  evInteraction,
			SenderID:   c.characterID,
			SenderName: c.name,
			TargetName: cmd.TargetEntityID,
			Action:     cmd.Action,
			Details:    cmd.Details,
		}, nil)

	case cmdMovement:
		return s.move(z, c, cmd.ToZoneID)

	case cmdTyping:
		s.broadcast(z, typingNotice{
			Type:          frameTyping,
			UserID:        c.characterID,
			ParticipantID: c.participantID,
			IsTyping:      cmd.IsTyping,
		}, c)

	case cmdWho:
		s.sendTo(c, s.snapshot(z))

	case cmdUsageCheck:
		s.sendTo(c, usageUpdate{
			Type:              frameUsageUpdate,
			InteractionsUsed:  c.interactions,
			InteractionsLimit: s.opts.UsageLimit,
		})

	case cmdPing:
		s.sendTo(c, pong{Type: framePong})

	default:
		s.log.Debug("ignoring unknown command", zap.String("type", cmd.Type))
	}
	return z
}

// move walks the client from one zone to another over the same
// connection, with departure and arrival broadcasts on each side.
func (s *Server) move(from *zone, c *client, toID string) *zone {
	if toID == "" || toID == from.id {
		s.sendTo(c, errorNotice{Type: frameError, Message: "invalid destination zone"})
		return from
	}

	if from.remove(c) {
		s.broadcast(from, gameEvent{
			Type:          frameGameEvent,
			EventType:     evCharacterLeft,
			CharacterID:   c.characterID,
			CharacterName: c.name,
		}, nil)
	}

	to := s.hub.zone(toID)
	s.log.Info("character moved",
		zap.String("character", c.characterID),
		zap.String("from", from.id),
		zap.String("to", to.id))
	s.join(to, c)
	return to
}

// snapshot builds the zone_data frame for who requests.
func (s *Server) snapshot(z *zone) zoneData {
	users := z.activeUsers()
	if s.npc != nil {
		users = append(users, zoneUser{
			CharacterID: s.npc.id,
			Name:        s.npc.name,
			IsAI:        true,
		})
	}
	return zoneData{
		Type: frameZoneData,
		Zone: zoneInfo{
			ID:          z.id,
			Name:        z.id,
			Description: "A development zone.",
		},
		ActiveUsers: users,
	}
}

// broadcast marshals a frame once and fans it out to the zone. Clients
// too slow to keep up are dropped.
func (s *Server) broadcast(z *zone, frame any, except *client) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("marshal broadcast frame", zap.Error(err))
		return
	}
	for _, c := range z.broadcast(data, except) {
		s.drop(z, c, "slow consumer")
	}
}

// sendTo queues a frame on a single client without blocking.
func (s *Server) sendTo(c *client, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("marshal frame", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		s.log.Warn("dropping frame for slow client", zap.String("character", c.characterID))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
