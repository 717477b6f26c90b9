package zoneserver

// Frame types the server sends.
const (
	frameGameEvent      = "game_event"
	frameZoneData       = "zone_data"
	frameRecentMessages = "recent_messages"
	frameError          = "error"
	frameUsageUpdate    = "usage_update"
	framePong           = "pong"
	frameTyping         = "typing"
)

// Game event sub-types.
const (
	evMessage          = "message"
	evCharacterEntered = "character_entered"
	evCharacterLeft    = "character_left"
	evInteraction      = "interaction"
	evEmote            = "emote"
)

// Command types the server accepts.
const (
	cmdMessage     = "message"
	cmdEmote       = "emote"
	cmdInteraction = "interaction"
	cmdMovement    = "movement"
	cmdTyping      = "typing"
	cmdWho         = "who"
	cmdUsageCheck  = "usage_check"
	cmdPing        = "ping"
)

// command is the inbound client frame. One struct covers every command
// type; unused fields stay empty.
type command struct {
	Type           string `json:"type"`
	Content        string `json:"content"`
	TargetEntityID string `json:"target_entity_id"`
	Action         string `json:"action"`
	Details        string `json:"details"`
	ToZoneID       string `json:"to_zone_id"`
	IsTyping       bool   `json:"is_typing"`
}

type gameEvent struct {
	Type          string `json:"type"`
	EventType     string `json:"event_type"`
	SenderID      string `json:"sender_id,omitempty"`
	SenderName    string `json:"sender_name,omitempty"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	Content       string `json:"content,omitempty"`
	IsAI          bool   `json:"is_ai,omitempty"`
	TargetName    string `json:"target_name,omitempty"`
	Action        string `json:"action,omitempty"`
	Details       string `json:"details,omitempty"`
}

type zoneUser struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	IsAI        bool   `json:"is_ai,omitempty"`
}

type zoneInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type zoneData struct {
	Type        string     `json:"type"`
	Zone        zoneInfo   `json:"zone"`
	ActiveUsers []zoneUser `json:"active_users"`
}

type recentMessages struct {
	Type     string      `json:"type"`
	Messages []gameEvent `json:"messages"`
}

type errorNotice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type usageUpdate struct {
	Type              string `json:"type"`
	InteractionsUsed  int    `json:"interactions_used"`
	InteractionsLimit int    `json:"interactions_limit"`
	Premium           bool   `json:"premium,omitempty"`
}

type typingNotice struct {
	Type          string `json:"type"`
	UserID        string `json:"user_id"`
	ParticipantID string `json:"participant_id"`
	IsTyping      bool   `json:"is_typing"`
}

type pong struct {
	Type string `json:"type"`
}
