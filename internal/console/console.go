// Package console renders the chat session as styled lines on stdout.
// It is the shipped implementation of the session's callback sink; the
// session core itself knows nothing about it.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/emberveil/mudlark/internal/chat"
)

// Options configures a Console.
type Options struct {
	// Out is the render target. Nil means stdout.
	Out io.Writer

	// NoColor disables all styling regardless of TTY detection.
	NoColor bool

	// Logger receives events the console does not render, such as typing
	// notices. Nil means no logging.
	Logger *zap.Logger
}

// Console writes one line per event. Safe for concurrent use by the
// session's goroutines: every render goes through a single Fprint.
type Console struct {
	out   io.Writer
	log   *zap.Logger
	color bool
	md    *glamour.TermRenderer
}

// New builds a console. Styling is on only when the output is a real
// terminal and NoColor is unset.
func New(opts Options) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	color := !opts.NoColor
	if f, ok := out.(*os.File); ok {
		color = color && isatty.IsTerminal(f.Fd())
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		md = nil
	}

	return &Console{out: out, log: log, color: color, md: md}
}

// Sink wires the console's renderers into a session callback sink.
func (c *Console) Sink() *chat.Sink {
	return &chat.Sink{
		Message:    c.Message,
		Error:      c.Error,
		Connect:    c.Connect,
		Disconnect: c.Disconnect,
		Typing:     c.Typing,
		Presence:   c.Presence,
		Local:      c.Local,
	}
}

// Message renders one chat line. System narration is italic and dim;
// emote lines arrive pre-formatted ("* name action") and are printed
// without a sender prefix.
func (c *Console) Message(sender, content string, self, ai, system bool) {
	if system {
		c.println(c.styled(styleSystem, content))
		return
	}
	if strings.HasPrefix(content, "* ") {
		c.println(c.styled(senderStyle(self, ai), content))
		return
	}
	c.println(c.styled(senderStyle(self, ai), sender) + ": " + content)
}

// Error renders a session error as a labeled line.
func (c *Console) Error(message string) {
	c.println(c.styled(styleError, "[!] "+message))
}

// Connect renders connection progress.
func (c *Console) Connect(message string) {
	c.println(c.styled(styleConnect, message))
}

// Disconnect renders the disconnection notice.
func (c *Console) Disconnect(message string) {
	c.println(c.styled(styleDimmed, message))
}

// Typing has no rendering slot in a line-oriented console; typing state
// changes are logged at debug level and otherwise dropped.
func (c *Console) Typing(userID, participantID string, typing bool) {
	c.log.Debug("typing state",
		zap.String("user", userID),
		zap.String("participant", participantID),
		zap.Bool("typing", typing))
}

// Presence renders the zone's active character list as a bulleted block.
func (c *Console) Presence(active []chat.ZoneUser) {
	if len(active) == 0 {
		c.println(c.styled(styleSystem, "Nobody else is here."))
		return
	}
	var b strings.Builder
	b.WriteString(c.styled(styleHeader, "Characters here:"))
	for _, u := range active {
		b.WriteString("\n  • ")
		b.WriteString(c.styled(senderStyle(false, u.IsAI), u.Name))
		if u.IsAI {
			b.WriteString(c.styled(styleDimmed, " (AI)"))
		}
	}
	c.println(b.String())
}

// Local renders parser effects: help as markdown, clear as a screen
// reset, everything else as an informational line.
func (c *Console) Local(effect chat.Effect) {
	switch effect.Kind {
	case chat.EffectNone:
	case chat.EffectHelp:
		c.println(c.markdown(effect.Text))
	case chat.EffectClear:
		c.clear()
	case chat.EffectNotice:
		c.println(c.styled(styleNotice, effect.Text))
	case chat.EffectUsageError:
		c.println(c.styled(styleNotice, effect.Text))
	}
}

func (c *Console) println(line string) {
	fmt.Fprintln(c.out, line)
}

func (c *Console) styled(st lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return st.Render(s)
}

func (c *Console) markdown(text string) string {
	if c.md == nil || !c.color {
		return text
	}
	rendered, err := c.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (c *Console) clear() {
	if f, ok := c.out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return
	}
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}
