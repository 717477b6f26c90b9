package chat

// Sink is the set of presentation callbacks a Session invokes. Every slot
// is optional: a nil slot drops its events silently, so a caller can wire
// only what it renders. The Session never calls a slot while holding its
// own locks, but slots may be called from different goroutines and must
// be safe for that.
type Sink struct {
	// Message receives chat content and system notices. self is true when
	// the line originated from the session's own character, ai when it
	// came from an AI-controlled character, system for server narration.
	Message func(sender, content string, self, ai, system bool)

	// Error receives session error reports.
	Error func(message string)

	// Connect receives connection progress notices.
	Connect func(message string)

	// Disconnect receives the disconnection notice.
	Disconnect func(message string)

	// Typing receives typing state changes for other participants.
	Typing func(userID, participantID string, typing bool)

	// Presence receives the zone's active user list.
	Presence func(active []ZoneUser)

	// Local receives parser effects (help, clear, usage errors).
	Local func(effect Effect)
}

func (s *Sink) message(sender, content string, self, ai, system bool) {
	if s != nil && s.Message != nil {
		s.Message(sender, content, self, ai, system)
	}
}

func (s *Sink) error(message string) {
	if s != nil && s.Error != nil {
		s.Error(message)
	}
}

func (s *Sink) connect(message string) {
	if s != nil && s.Connect != nil {
		s.Connect(message)
	}
}

func (s *Sink) disconnect(message string) {
	if s != nil && s.Disconnect != nil {
		s.Disconnect(message)
	}
}

func (s *Sink) typing(userID, participantID string, typing bool) {
	if s != nil && s.Typing != nil {
		s.Typing(userID, participantID, typing)
	}
}

func (s *Sink) presence(active []ZoneUser) {
	if s != nil && s.Presence != nil {
		s.Presence(active)
	}
}

func (s *Sink) local(effect Effect) {
	if s != nil && s.Local != nil {
		s.Local(effect)
	}
}
