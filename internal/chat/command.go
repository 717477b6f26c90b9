package chat

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies the kind of outbound frame.
type CommandType string

const (
	CmdMessage     CommandType = "message"
	CmdEmote       CommandType = "emote"
	CmdInteraction CommandType = "interaction"
	CmdMovement    CommandType = "movement"
	CmdTyping      CommandType = "typing"
	CmdWho         CommandType = "who"
	CmdUsageCheck  CommandType = "usage_check"
	CmdPing        CommandType = "ping"
)

// Command is an outbound action. Commands are fire-and-forget: the server
// never correlates a response to a specific command.
type Command interface {
	commandType() CommandType
}

// Message is a chat line addressed to the current zone.
type Message struct {
	Content string
}

// Emote is a third-person action line.
type Emote struct {
	Content string
}

// Interaction targets an entity in the zone with an action verb.
type Interaction struct {
	TargetEntityID string
	Action         string
	Details        string
}

// Movement asks the server to move the character to another zone.
type Movement struct {
	ToZoneID string
}

// Typing reports whether the user is currently composing a message.
type Typing struct {
	Active bool
}

// Who requests the zone snapshot with the current presence list.
type Who struct{}

// UsageCheck requests the account's AI interaction quota.
type UsageCheck struct{}

// Ping is the application-level keep-alive frame.
type Ping struct{}

func (Message) commandType() CommandType     { return CmdMessage }
func (Emote) commandType() CommandType       { return CmdEmote }
func (Interaction) commandType() CommandType { return CmdInteraction }
func (Movement) commandType() CommandType    { return CmdMovement }
func (Typing) commandType() CommandType      { return CmdTyping }
func (Who) commandType() CommandType         { return CmdWho }
func (UsageCheck) commandType() CommandType  { return CmdUsageCheck }
func (Ping) commandType() CommandType        { return CmdPing }

// EncodeCommand serialises an outbound command into its wire frame.
func EncodeCommand(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case Message:
		return json.Marshal(struct {
			Type    CommandType `json:"type"`
			Content string      `json:"content"`
		}{CmdMessage, c.Content})

	case Emote:
		return json.Marshal(struct {
			Type    CommandType `json:"type"`
			Content string      `json:"content"`
		}{CmdEmote, c.Content})

	case Interaction:
		return json.Marshal(struct {
			Type           CommandType `json:"type"`
			TargetEntityID string      `json:"target_entity_id"`
			Action         string      `json:"action"`
			Details        string      `json:"details,omitempty"`
		}{CmdInteraction, c.TargetEntityID, c.Action, c.Details})

	case Movement:
		return json.Marshal(struct {
			Type     CommandType `json:"type"`
			ToZoneID string      `json:"to_zone_id"`
		}{CmdMovement, c.ToZoneID})

	case Typing:
		return json.Marshal(struct {
			Type     CommandType `json:"type"`
			IsTyping bool        `json:"is_typing"`
		}{CmdTyping, c.Active})

	case Who:
		return json.Marshal(struct {
			Type CommandType `json:"type"`
		}{CmdWho})

	case UsageCheck:
		return json.Marshal(struct {
			Type CommandType `json:"type"`
		}{CmdUsageCheck})

	case Ping:
		return json.Marshal(struct {
			Type CommandType `json:"type"`
		}{CmdPing})
	}

	return nil, fmt.Errorf("unknown command type %T", cmd)
}
