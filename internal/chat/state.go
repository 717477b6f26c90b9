package chat

// State is the connection lifecycle phase of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

var stateNames = map[State]string{
	Disconnected:  "disconnected",
	Connecting:    "connecting",
	Connected:     "connected",
	Disconnecting: "disconnecting",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}
