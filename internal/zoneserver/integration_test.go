package zoneserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emberveil/mudlark/internal/chat"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sinkRecorder captures everything a session reports so the tests can
// assert on it after the fact.
type sinkRecorder struct {
	mu       sync.Mutex
	messages []string
	errors   []string
	typing   []string
	presence [][]chat.ZoneUser
}

func (r *sinkRecorder) sink() *chat.Sink {
	return &chat.Sink{
		Message: func(sender, content string, self, ai, system bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.messages = append(r.messages,
				fmt.Sprintf("%s|%s|self=%t|ai=%t|system=%t", sender, content, self, ai, system))
		},
		Error: func(message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errors = append(r.errors, message)
		},
		Typing: func(userID, participantID string, typing bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.typing = append(r.typing,
				fmt.Sprintf("%s|participant=%s|typing=%t", userID, participantID, typing))
		},
		Presence: func(active []chat.ZoneUser) {
			r.mu.Lock()
			defer r.mu.Unlock()
			users := make([]chat.ZoneUser, len(active))
			copy(users, active)
			r.presence = append(r.presence, users)
		},
	}
}

func (r *sinkRecorder) sawMessage(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (r *sinkRecorder) sawError(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func (r *sinkRecorder) sawTyping(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.typing {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func (r *sinkRecorder) lastPresence() []chat.ZoneUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.presence) == 0 {
		return nil
	}
	return r.presence[len(r.presence)-1]
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// readUntil drains frames from a raw connection until one matches.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool, what string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("reading toward %s: %v", what, err)
		}
		if match(frame) {
			return frame
		}
	}
	t.Fatalf("timed out waiting for %s", what)
	return nil
}

// TestSessionRoundTrip runs a real client session against the dev
// server: connect, exchange messages and emotes with another
// connection, query presence, and exit cleanly.
func TestSessionRoundTrip(t *testing.T) {
	_, wsBase := newTestServer(t, Options{})

	rec := &sinkRecorder{}
	sess := chat.NewSession(chat.Options{ServerURL: wsBase, Token: "dev-token"}, rec.sink())

	input := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- sess.Run(context.Background(), "char-hero", "atrium", input)
	}()

	// The session requests usage and presence right after connecting.
	waitFor(t, func() bool { return rec.sawMessage("Usage: 0/") }, "usage report")
	waitFor(t, func() bool { return len(rec.lastPresence()) == 1 }, "initial presence")
	assert.Equal(t, "Wanderer-char-hero", rec.lastPresence()[0].Name)

	// A second connection joins and the session hears about it.
	obs := dialZone(t, wsBase, "atrium", "char-obs", "Observer")
	waitFor(t, func() bool { return rec.sawMessage("Observer has entered the zone") }, "join notice")

	// A plain input line becomes a zone message; both sides see it and
	// the session marks its own echo as self.
	input <- "hello from afar"
	readUntil(t, obs, func(f map[string]any) bool {
		return f["event_type"] == "message" && f["content"] == "hello from afar"
	}, "session message at the observer")
	waitFor(t, func() bool { return rec.sawMessage("|hello from afar|self=true") }, "self echo")

	// An emote from the other side renders as an action line.
	sendRaw(t, obs, `{"type":"emote","content":"waves a lantern"}`)
	waitFor(t, func() bool { return rec.sawMessage("* Observer waves a lantern") }, "observer emote")

	// /who refreshes presence with both characters.
	input <- "/who"
	waitFor(t, func() bool { return len(rec.lastPresence()) == 2 }, "refreshed presence")
	var names []string
	for _, u := range rec.lastPresence() {
		names = append(names, u.Name)
	}
	assert.ElementsMatch(t, []string{"Wanderer-char-hero", "Observer"}, names)

	// /exit ends the session; the zone sees the departure.
	input <- "/exit"
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not exit")
	}
	assert.False(t, sess.IsConnected())

	readUntil(t, obs, func(f map[string]any) bool {
		return f["event_type"] == "character_left" && f["character_id"] == "char-hero"
	}, "departure at the observer")
}

func TestSessionSeesTypingNotices(t *testing.T) {
	_, wsBase := newTestServer(t, Options{})

	rec := &sinkRecorder{}
	sess := chat.NewSession(chat.Options{ServerURL: wsBase, Token: "dev-token"}, rec.sink())

	input := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- sess.Run(context.Background(), "char-hero", "atrium", input)
	}()
	waitFor(t, func() bool { return rec.sawMessage("Usage: 0/") }, "session ready")

	obs := dialZone(t, wsBase, "atrium", "char-obs", "Observer")
	sendRaw(t, obs, `{"type":"typing","is_typing":true}`)

	waitFor(t, func() bool { return rec.sawTyping("char-obs|participant=") }, "typing notice")
	assert.True(t, rec.sawTyping("typing=true"))

	// The participant id is a real membership id, not the character id.
	rec.mu.Lock()
	line := rec.typing[0]
	rec.mu.Unlock()
	assert.NotContains(t, line, "participant=|", "participant id must not be empty")

	input <- "/exit"
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not exit")
	}
}

// TestSessionSurvivesServerShutdown verifies the failure path: when the
// server goes away the session reports the loss, disconnects, and Run
// returns the transport error.
func TestSessionSurvivesServerShutdown(t *testing.T) {
	s := New(Options{})
	srv := httptest.NewServer(s.Handler())
	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")

	rec := &sinkRecorder{}
	sess := chat.NewSession(chat.Options{ServerURL: wsBase, Token: "dev-token"}, rec.sink())

	input := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- sess.Run(context.Background(), "char-hero", "atrium", input)
	}()
	waitFor(t, func() bool { return rec.sawMessage("Usage: 0/") }, "session ready")

	srv.CloseClientConnections()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not notice the lost connection")
	}
	assert.True(t, rec.sawError("Connection lost"))
	assert.False(t, sess.IsConnected())

	srv.Close()
}
