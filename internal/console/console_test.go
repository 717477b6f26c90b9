package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emberveil/mudlark/internal/chat"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Options{Out: &buf, NoColor: true}), &buf
}

func TestMessageLineShapes(t *testing.T) {
	tests := []struct {
		name   string
		render func(c *Console)
		want   string
	}{
		{
			name:   "player message",
			render: func(c *Console) { c.Message("Elara", "hello there", false, false, false) },
			want:   "Elara: hello there\n",
		},
		{
			name:   "emote keeps its preformatted line",
			render: func(c *Console) { c.Message("Elara", "* Elara waves", false, false, false) },
			want:   "* Elara waves\n",
		},
		{
			name:   "system narration drops the sender prefix",
			render: func(c *Console) { c.Message("System", "Bob has left the zone", false, false, true) },
			want:   "Bob has left the zone\n",
		},
		{
			name:   "error is labeled",
			render: func(c *Console) { c.Error("Not connected") },
			want:   "[!] Not connected\n",
		},
		{
			name:   "connect notice",
			render: func(c *Console) { c.Connect("Connected to zone z1") },
			want:   "Connected to zone z1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, buf := newTestConsole()
			tt.render(c)
			if got := buf.String(); got != tt.want {
				t.Errorf("rendered %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPresenceBlock(t *testing.T) {
	c, buf := newTestConsole()
	c.Presence([]chat.ZoneUser{
		{CharacterID: "c1", Name: "Elara"},
		{CharacterID: "c2", Name: "Willow", IsAI: true},
	})

	out := buf.String()
	for _, want := range []string{"Characters here:", "• Elara", "• Willow (AI)"} {
		if !strings.Contains(out, want) {
			t.Errorf("presence output missing %q:\n%s", want, out)
		}
	}
}

func TestPresenceEmpty(t *testing.T) {
	c, buf := newTestConsole()
	c.Presence(nil)
	if got := buf.String(); got != "Nobody else is here.\n" {
		t.Errorf("rendered %q", got)
	}
}

func TestLocalEffects(t *testing.T) {
	c, buf := newTestConsole()

	c.Local(chat.Effect{Kind: chat.EffectNone})
	if buf.Len() != 0 {
		t.Errorf("EffectNone rendered %q, want nothing", buf.String())
	}

	c.Local(chat.Effect{Kind: chat.EffectNotice, Text: "Unknown command /dance."})
	if !strings.Contains(buf.String(), "Unknown command /dance.") {
		t.Errorf("notice not rendered: %q", buf.String())
	}

	buf.Reset()
	c.Local(chat.Effect{Kind: chat.EffectUsageError, Text: "usage: /me <action>"})
	if !strings.Contains(buf.String(), "usage: /me <action>") {
		t.Errorf("usage error not rendered: %q", buf.String())
	}
}

// Help falls back to the raw markdown when styling is off, so the
// command table must still reach the writer.
func TestLocalHelpPlain(t *testing.T) {
	c, buf := newTestConsole()
	c.Local(chat.Effect{Kind: chat.EffectHelp, Text: chat.HelpText})
	if !strings.Contains(buf.String(), "/interact") {
		t.Errorf("help output missing command table:\n%s", buf.String())
	}
}

// Sink must populate every slot so no event class is silently lost.
func TestSinkWiresAllSlots(t *testing.T) {
	c, _ := newTestConsole()
	s := c.Sink()

	if s.Message == nil || s.Error == nil || s.Connect == nil ||
		s.Disconnect == nil || s.Typing == nil || s.Presence == nil || s.Local == nil {
		t.Error("sink has unwired slots")
	}
}
