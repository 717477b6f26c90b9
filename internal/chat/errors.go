package chat

import "errors"

var (
	// ErrNotConnected is returned by outbound operations attempted while
	// the session has no live transport.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected is returned by Connect when the session is not
	// in the disconnected state.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrMissingToken is returned by Connect when no access token is set.
	ErrMissingToken = errors.New("missing access token")

	// ErrMissingIDs is returned by Connect when the character or zone id
	// is empty.
	ErrMissingIDs = errors.New("character and zone ids required")

	// ErrMalformedFrame wraps decode failures for inbound frames.
	ErrMalformedFrame = errors.New("malformed frame")
)

// errRemoteClosed marks a clean close initiated by the server. It is
// filtered out before Run returns.
var errRemoteClosed = errors.New("remote closed")
