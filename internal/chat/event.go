package chat

import (
	"encoding/json"
	"fmt"
)

// FrameType identifies the kind of inbound frame.
type FrameType string

const (
	FrameGameEvent      FrameType = "game_event"
	FrameZoneData       FrameType = "zone_data"
	FrameRecentMessages FrameType = "recent_messages"
	FrameError          FrameType = "error"
	FrameUsageUpdate    FrameType = "usage_update"
	FramePong           FrameType = "pong"
	FrameTyping         FrameType = "typing"
)

// EventType discriminates the game_event sub-variants.
type EventType string

const (
	EventMessage          EventType = "message"
	EventCharacterEntered EventType = "character_entered"
	EventCharacterLeft    EventType = "character_left"
	EventInteraction      EventType = "interaction"
	EventEmote            EventType = "emote"
	EventQuest            EventType = "quest"
	EventCombat           EventType = "combat"
	EventTrade            EventType = "trade"
)

var knownEventTypes = map[EventType]bool{
	EventMessage:          true,
	EventCharacterEntered: true,
	EventCharacterLeft:    true,
	EventInteraction:      true,
	EventEmote:            true,
	EventQuest:            true,
	EventCombat:           true,
	EventTrade:            true,
}

// Event is a decoded inbound frame. The concrete types are GameEvent,
// ZoneData, RecentMessages, ErrorNotice, UsageUpdate, TypingNotice and
// Pong.
type Event interface {
	frameType() FrameType
}

// GameEvent is a zone happening pushed by the server. EventType selects
// the variant; the remaining fields are populated per variant.
type GameEvent struct {
	EventType     EventType `json:"event_type"`
	SenderID      string    `json:"sender_id,omitempty"`
	SenderName    string    `json:"sender_name,omitempty"`
	CharacterID   string    `json:"character_id,omitempty"`
	CharacterName string    `json:"character_name,omitempty"`
	Content       string    `json:"content,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	IsAI          bool      `json:"is_ai,omitempty"`
	TargetName    string    `json:"target_name,omitempty"`
	Action        string    `json:"action,omitempty"`
	AttackerID    string    `json:"attacker_id,omitempty"`
	AttackerName  string    `json:"attacker_name,omitempty"`
	Damage        int       `json:"damage,omitempty"`
	QuestName     string    `json:"quest_name,omitempty"`
	Status        string    `json:"status,omitempty"`
	ItemName      string    `json:"item_name,omitempty"`
}

func (*GameEvent) frameType() FrameType { return FrameGameEvent }

// OriginID returns the character id the event originates from, used for
// self-origin detection. Empty when the server sent no id.
func (e *GameEvent) OriginID() string {
	if e.EventType == EventCombat && e.AttackerID != "" {
		return e.AttackerID
	}
	if e.SenderID != "" {
		return e.SenderID
	}
	return e.CharacterID
}

// displayName picks the best available name for the event's origin.
func (e *GameEvent) displayName() string {
	if e.EventType == EventCombat && e.AttackerName != "" {
		return e.AttackerName
	}
	if e.SenderName != "" {
		return e.SenderName
	}
	if e.CharacterName != "" {
		return e.CharacterName
	}
	return "Unknown"
}

// Render produces the human-readable form of the event: the sender label,
// the content line, and whether the line is system-styled. Missing
// optional fields fall back to generic phrasing.
func (e *GameEvent) Render() (sender, content string, system bool) {
	name := e.displayName()

	switch e.EventType {
	case EventMessage:
		return name, e.Content, false

	case EventEmote:
		return name, "* " + name + " " + e.Content, false

	case EventCharacterEntered:
		return "System", name + " has entered the zone", true

	case EventCharacterLeft:
		return "System", name + " has left the zone", true

	case EventInteraction:
		action := e.Action
		if action == "" {
			action = "interacts with"
		}
		target := e.TargetName
		if target == "" {
			target = "something"
		}
		return "System", name + " " + action + " " + target, true

	case EventCombat:
		action := e.Action
		if action == "" {
			action = "attacks"
		}
		target := e.TargetName
		if target == "" {
			target = "someone"
		}
		line := name + " " + action + " " + target
		if e.Damage > 0 {
			line += fmt.Sprintf(" for %d damage", e.Damage)
		}
		return "System", line, true

	case EventQuest:
		status := e.Status
		if status == "" {
			status = "updated"
		}
		if e.QuestName == "" {
			return "System", name + " " + status + " a quest", true
		}
		return "System", fmt.Sprintf("%s %s the quest %q", name, status, e.QuestName), true

	case EventTrade:
		target := e.TargetName
		if target == "" {
			target = "someone"
		}
		if e.ItemName == "" {
			return "System", name + " trades with " + target, true
		}
		return "System", name + " trades " + e.ItemName + " to " + target, true
	}

	return name, e.Content, false
}

// ZoneUser is one present character in a zone.
type ZoneUser struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	IsAI        bool   `json:"is_ai,omitempty"`
}

// ZoneInfo describes the zone itself.
type ZoneInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ZoneData is the zone snapshot sent in response to a presence request.
type ZoneData struct {
	Zone        ZoneInfo   `json:"zone"`
	ActiveUsers []ZoneUser `json:"active_users"`
}

func (*ZoneData) frameType() FrameType { return FrameZoneData }

// RecentMessages replays the zone's message history on join.
type RecentMessages struct {
	Messages []GameEvent `json:"messages"`
}

func (*RecentMessages) frameType() FrameType { return FrameRecentMessages }

// ErrorNotice is a server-side error report.
type ErrorNotice struct {
	Message string `json:"message"`
}

func (*ErrorNotice) frameType() FrameType { return FrameError }

// UsageUpdate reports the account's AI interaction quota.
type UsageUpdate struct {
	InteractionsUsed  int  `json:"interactions_used"`
	InteractionsLimit int  `json:"interactions_limit"`
	Premium           bool `json:"premium,omitempty"`
}

func (*UsageUpdate) frameType() FrameType { return FrameUsageUpdate }

// TypingNotice reports a participant's typing state change.
type TypingNotice struct {
	UserID        string `json:"user_id"`
	ParticipantID string `json:"participant_id"`
	IsTyping      bool   `json:"is_typing"`
}

func (*TypingNotice) frameType() FrameType { return FrameTyping }

// Pong acknowledges an application-level ping.
type Pong struct{}

func (*Pong) frameType() FrameType { return FramePong }

type frameHeader struct {
	Type FrameType `json:"type"`
}

// DecodeFrame parses one inbound frame. It returns (nil, nil) for frames
// with an unrecognized type or event_type, which are ignored so newer
// servers can talk to older clients. A frame that is not valid JSON, or
// whose body does not match its declared type, fails with
// ErrMalformedFrame.
func DecodeFrame(data []byte) (Event, error) {
	var hdr frameHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch hdr.Type {
	case FrameGameEvent:
		var ev GameEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		if !knownEventTypes[ev.EventType] {
			return nil, nil
		}
		return &ev, nil

	case FrameZoneData:
		var zd ZoneData
		if err := json.Unmarshal(data, &zd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return &zd, nil

	case FrameRecentMessages:
		var rm RecentMessages
		if err := json.Unmarshal(data, &rm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return &rm, nil

	case FrameError:
		var en ErrorNotice
		if err := json.Unmarshal(data, &en); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return &en, nil

	case FrameUsageUpdate:
		var uu UsageUpdate
		if err := json.Unmarshal(data, &uu); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return &uu, nil

	case FrameTyping:
		var tn TypingNotice
		if err := json.Unmarshal(data, &tn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return &tn, nil

	case FramePong:
		return &Pong{}, nil
	}

	return nil, nil
}
