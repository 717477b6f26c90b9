package chat

import "strings"

// EffectKind classifies a local effect produced by the parser.
type EffectKind int

const (
	// EffectNone marks input with nothing to do (blank lines).
	EffectNone EffectKind = iota
	// EffectHelp renders the command reference.
	EffectHelp
	// EffectClear clears the screen.
	EffectClear
	// EffectNotice renders an informational line.
	EffectNotice
	// EffectUsageError renders a command usage error.
	EffectUsageError
)

// Effect is a parser outcome rendered locally, never sent over the wire.
type Effect struct {
	Kind EffectKind
	Text string
}

// Action is the outcome of parsing one input line: either a Send carrying
// a wire command, or a Local carrying an effect.
type Action interface {
	isAction()
}

// Send carries a command destined for the server.
type Send struct {
	Cmd Command
}

// Local carries an effect handled entirely on the client.
type Local struct {
	Effect Effect
}

func (Send) isAction()  {}
func (Local) isAction() {}

// HelpText is the command reference rendered by /help.
const HelpText = `# Commands

| Command | Description |
|---------|-------------|
| /help | Show this help |
| /me <action> | Emote in the third person |
| /look | Look around the zone |
| /who | List the characters present |
| /move <zone-id> | Travel to another zone |
| /interact <entity-id> <action> | Interact with an entity |
| /clear | Clear the screen |
| /exit | Leave the zone and quit |

Anything else you type is said aloud to the zone.
`

// ParseLine interprets one line of user input. Lines starting with "/"
// are commands selected by their first whitespace-delimited token,
// case-insensitively; anything else is a plain chat message. The parser
// never fails: unknown commands and bad arguments degrade to local
// effects.
func ParseLine(line string) Action {
	line = strings.TrimSpace(line)
	if line == "" {
		return Local{Effect{Kind: EffectNone}}
	}
	if !strings.HasPrefix(line, "/") {
		return Send{Message{Content: line}}
	}

	parts := strings.Fields(line)
	name := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch name {
	case "/help":
		return Local{Effect{Kind: EffectHelp, Text: HelpText}}

	case "/clear":
		return Local{Effect{Kind: EffectClear}}

	case "/me":
		if rest == "" {
			return Local{Effect{Kind: EffectUsageError, Text: "usage: /me <action>"}}
		}
		return Send{Emote{Content: rest}}

	case "/look", "/who":
		return Send{Who{}}

	case "/move":
		if len(args) == 0 {
			return Local{Effect{Kind: EffectUsageError, Text: "usage: /move <zone-id>"}}
		}
		return Send{Movement{ToZoneID: args[0]}}

	case "/interact":
		if len(args) < 2 {
			return Local{Effect{Kind: EffectUsageError, Text: "usage: /interact <entity-id> <action>"}}
		}
		return Send{Interaction{
			TargetEntityID: args[0],
			Action:         strings.Join(args[1:], " "),
		}}
	}

	return Local{Effect{
		Kind: EffectNotice,
		Text: "Unknown command " + name + ". Type /help for the command list.",
	}}
}
