// Package chat implements the realtime zone session for the Emberveil
// backend: the websocket connection manager, the wire codec for inbound
// events and outbound commands, the slash-command parser, and the
// keep-alive loops that hold a live zone conversation open.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second

	// Transport keep-alive: websocket control pings, answered by the
	// server's websocket layer.
	pingInterval = 30 * time.Second
	pongTimeout  = 10 * time.Second

	// Application keep-alive: ping frames the zone server answers with
	// pong frames. Separate from the transport layer above.
	defaultKeepAlive = 20 * time.Second

	frameBuffer = 16
)

// Options configures a Session.
type Options struct {
	// ServerURL is the ws:// or wss:// base of the zone server, without a
	// trailing slash.
	ServerURL string

	// Token is the bearer token identifying the account. The session
	// borrows it from the caller's auth context and never stores it
	// elsewhere.
	Token string

	// KeepAlive overrides the application-level ping interval. Zero means
	// the default of 20s.
	KeepAlive time.Duration

	// Dial overrides the transport dialer. Nil means a websocket dial.
	Dial Dialer

	// Logger receives debug-level traffic traces. Nil means no logging.
	Logger *zap.Logger
}

// Session owns one live zone connection. The transport handle belongs
// exclusively to the session: no other component reads or writes it. A
// session is reusable; after a disconnect a new Connect is legal.
type Session struct {
	opts Options
	sink *Sink
	log  *zap.Logger

	mu          sync.Mutex
	writeMu     sync.Mutex // serialises all conn writes (commands, pings)
	conn        Conn
	state       State
	characterID string
	zoneID      string
	runCancel   context.CancelFunc

	shutdown atomic.Bool
}

// NewSession creates a session that reports through sink. A nil sink
// drops all callbacks.
func NewSession(opts Options, sink *Sink) *Session {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = defaultKeepAlive
	}
	if opts.Dial == nil {
		opts.Dial = dialWebsocket
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{opts: opts, sink: sink, log: log, state: Disconnected}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether the session holds a live transport.
func (s *Session) IsConnected() bool {
	return s.State() == Connected
}

// Shutdown requests a clean stop. Run observes the request within one
// wait cycle. Safe to call from any goroutine, including signal handlers,
// and safe to call more than once.
func (s *Session) Shutdown() {
	s.shutdown.Store(true)
	s.mu.Lock()
	cancel := s.runCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) zoneURL(characterID, zoneID string) string {
	q := url.Values{}
	q.Set("character_id", characterID)
	q.Set("access_token", s.opts.Token)
	base := strings.TrimRight(s.opts.ServerURL, "/")
	return base + "/ws/zones/" + url.PathEscape(zoneID) + "?" + q.Encode()
}

// Connect validates the credentials and opens the zone transport. It
// fails fast, without any network activity, when the token or either id
// is missing. On failure of any kind the session remains disconnected.
func (s *Session) Connect(ctx context.Context, characterID, zoneID string) error {
	if s.opts.Token == "" {
		s.sink.error("Cannot connect: no access token")
		return ErrMissingToken
	}
	if characterID == "" || zoneID == "" {
		s.sink.error("Cannot connect: character and zone ids are required")
		return ErrMissingIDs
	}

	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		s.sink.error("Already connected")
		return ErrAlreadyConnected
	}
	s.state = Connecting
	s.characterID = characterID
	s.zoneID = zoneID
	s.mu.Unlock()
	s.shutdown.Store(false)

	s.sink.connect("Connecting to zone " + zoneID + "...")

	conn, err := s.opts.Dial(ctx, s.zoneURL(characterID, zoneID))
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		s.sink.error("Connection failed: " + err.Error())
		return fmt.Errorf("dial zone %s: %w", zoneID, err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout))

	s.mu.Lock()
	s.conn = conn
	s.state = Connected
	s.mu.Unlock()

	s.sink.connect("Connected to zone " + zoneID)
	s.log.Debug("connected", zap.String("zone", zoneID), zap.String("character", characterID))
	return nil
}

// Disconnect closes the transport and releases the handle. It is
// idempotent and safe to call from any state; repeated calls are silent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == Disconnected && s.conn == nil {
		s.mu.Unlock()
		return
	}
	s.state = Disconnecting
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	s.mu.Lock()
	s.state = Disconnected
	s.mu.Unlock()

	s.sink.disconnect("Disconnected from zone")
}

// SendMessage says content to the zone.
func (s *Session) SendMessage(content string) error {
	return s.send(Message{Content: content})
}

// SendEmote performs a third-person action.
func (s *Session) SendEmote(content string) error {
	return s.send(Emote{Content: content})
}

// SendInteraction interacts with an entity in the zone.
func (s *Session) SendInteraction(targetEntityID, action, details string) error {
	return s.send(Interaction{TargetEntityID: targetEntityID, Action: action, Details: details})
}

// SendMovement moves the character to another zone.
func (s *Session) SendMovement(toZoneID string) error {
	return s.send(Movement{ToZoneID: toZoneID})
}

// SetTyping reports the typing state to other participants.
func (s *Session) SetTyping(active bool) error {
	return s.send(Typing{Active: active})
}

// RequestPresence asks for the zone snapshot.
func (s *Session) RequestPresence() error {
	return s.send(Who{})
}

// RequestUsage asks for the account's AI interaction quota.
func (s *Session) RequestUsage() error {
	return s.send(UsageCheck{})
}

// Ping sends an application-level keep-alive frame.
func (s *Session) Ping() error {
	return s.send(Ping{})
}

// send guards on the connected state: while disconnected it performs no
// transport write and reports exactly one error.
func (s *Session) send(cmd Command) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.state == Connected
	s.mu.Unlock()

	if !connected || conn == nil {
		s.sink.error("Not connected")
		return ErrNotConnected
	}

	data, err := EncodeCommand(cmd)
	if err != nil {
		s.sink.error("Could not encode command: " + err.Error())
		return err
	}

	s.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	if err != nil {
		s.sink.error("Send failed: " + err.Error())
		return fmt.Errorf("send %s: %w", cmd.commandType(), err)
	}

	s.log.Debug("sent", zap.String("command", string(cmd.commandType())))
	return nil
}

type frame struct {
	data []byte
	err  error
}

// readFrames owns the blocking transport reads and hands frames to the
// listen loop over a channel. Read deadlines on the websocket are fatal
// to the connection, so the bounded waiting happens on the channel side,
// not on the read itself.
func (s *Session) readFrames(ctx context.Context, conn Conn) <-chan frame {
	frames := make(chan frame, frameBuffer)
	go func() {
		defer close(frames)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case frames <- frame{err: err}:
				default:
				}
				return
			}
			select {
			case frames <- frame{data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames
}

// listen consumes inbound frames until cancellation, a clean remote
// close, or a transport failure. Decode failures are reported and the
// frame dropped; listening continues.
func (s *Session) listen(ctx context.Context, frames <-chan frame) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case fr, ok := <-frames:
			if !ok {
				return nil
			}
			if fr.err != nil {
				if s.shutdown.Load() || !s.IsConnected() {
					return nil
				}
				if websocket.IsCloseError(fr.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.Disconnect()
					return errRemoteClosed
				}
				s.sink.error("Connection lost: " + fr.err.Error())
				s.Disconnect()
				return fmt.Errorf("read frame: %w", fr.err)
			}
			s.handleFrame(fr.data)
		}
	}
}

// handleFrame decodes and dispatches one raw frame.
func (s *Session) handleFrame(data []byte) {
	ev, err := DecodeFrame(data)
	if err != nil {
		s.log.Debug("dropping malformed frame", zap.Error(err))
		s.sink.error("Received a malformed message from the server")
		return
	}
	if ev == nil {
		s.log.Debug("ignoring unknown frame", zap.ByteString("frame", data))
		return
	}
	s.dispatchEvent(ev)
}

func (s *Session) dispatchEvent(ev Event) {
	switch e := ev.(type) {
	case *GameEvent:
		sender, content, system := e.Render()
		s.sink.message(sender, content, s.isSelf(e.OriginID()), e.IsAI, system)

	case *RecentMessages:
		for i := range e.Messages {
			m := &e.Messages[i]
			sender, content, system := m.Render()
			s.sink.message(sender, content, s.isSelf(m.OriginID()), m.IsAI, system)
		}

	case *ZoneData:
		s.sink.presence(e.ActiveUsers)

	case *ErrorNotice:
		s.sink.error(e.Message)

	case *UsageUpdate:
		line := fmt.Sprintf("Usage: %d/%d AI interactions", e.InteractionsUsed, e.InteractionsLimit)
		if e.Premium {
			line += " (premium)"
		}
		s.sink.message("System", line, false, false, true)

	case *TypingNotice:
		s.sink.typing(e.UserID, e.ParticipantID, e.IsTyping)

	case *Pong:
		s.log.Debug("pong received")
	}
}

// isSelf reports whether id names the session's own character. Controls
// rendering style only, never routing.
func (s *Session) isSelf(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return id == s.characterID
}

// keepAlive sends an application ping every interval while connected. It
// stops within one interval of a shutdown request even without a context
// cancel.
func (s *Session) keepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.shutdown.Load() {
				return nil
			}
			if !s.IsConnected() {
				continue
			}
			_ = s.Ping()
		}
	}
}

// pingLoop sends transport-level control pings on the connection. The
// pong handler pushes the read deadline forward; a dead peer therefore
// surfaces as a read error within pingInterval+pongTimeout.
func (s *Session) pingLoop(ctx context.Context, conn Conn) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return nil
			}
		}
	}
}

// dispatchLine routes one parsed input line: wire commands to the
// transport, local effects to the sink.
func (s *Session) dispatchLine(line string) {
	switch act := ParseLine(line).(type) {
	case Send:
		_ = s.send(act.Cmd)
	case Local:
		s.sink.local(act.Effect)
	}
}

// Run connects and drives the session until the user exits, the context
// is cancelled, the server closes the conversation, or the transport
// fails. Input lines come from input; a closed channel and the literal
// line "/exit" both end the session. Whatever the exit path, Run marks
// the shutdown, stops the listener and both keep-alive loops, waits for
// them, and disconnects before returning.
func (s *Session) Run(ctx context.Context, characterID, zoneID string, input <-chan string) error {
	if err := s.Connect(ctx, characterID, zoneID); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.runCancel = cancel
	conn := s.conn
	s.mu.Unlock()

	defer func() {
		s.Shutdown()
		cancel()
		s.Disconnect()
		s.mu.Lock()
		s.runCancel = nil
		s.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(runCtx)

	frames := s.readFrames(gctx, conn)
	g.Go(func() error { return s.listen(gctx, frames) })
	g.Go(func() error { return s.keepAlive(gctx, s.opts.KeepAlive) })
	g.Go(func() error { return s.pingLoop(gctx, conn) })

	_ = s.RequestUsage()
	_ = s.RequestPresence()

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-input:
				if !ok {
					s.Shutdown()
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "/exit" {
					s.Shutdown()
					return nil
				}
				s.dispatchLine(line)
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, errRemoteClosed) {
		return nil
	}
	return err
}
