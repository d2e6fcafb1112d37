// Package customid encodes the compact identifier embedded in every rendered
// Discord control. The identifier carries enough of a snapshot (phase and
// version) for the router to recognise clicks on superseded controls.
package customid

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	// codecVersion is the format prefix. Decode refuses anything else; an
	// old control produced by a future format is dropped, never guessed at.
	codecVersion = "v1"

	delimiter = ":"

	// maxLength is Discord's custom_id limit
	maxLength = 100

	fieldCount = 6
)

// CodecError is a custom error type for identifier codec errors
type CodecError string

// Error implements the error interface
func (e CodecError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrUnknownVersion CodecError = "unknown identifier version"
	ErrMalformedID    CodecError = "malformed identifier"
	ErrTooLong        CodecError = "identifier exceeds custom id limit"
	ErrBadField       CodecError = "field contains the delimiter"
)

// ActionID is the decoded form of one control identifier
type ActionID struct {
	// SessionID is the session the control belongs to
	SessionID string

	// Action is the handler-defined action name
	Action string

	// Payload is an opaque handler-defined value
	Payload string

	// Phase is the session phase snapshot taken at render time
	Phase string

	// Version is the session version snapshot taken at render time
	Version int64
}

// Encode produces the wire form of an identifier. The payload is base64
// encoded so it can never collide with the delimiter; the remaining fields
// must not contain it.
func Encode(id *ActionID) (string, error) {
	if id == nil || id.SessionID == "" || id.Action == "" {
		return "", ErrMalformedID
	}

	for _, field := range []string{id.SessionID, id.Action, id.Phase} {
		if strings.Contains(field, delimiter) {
			return "", ErrBadField
		}
	}

	encoded := strings.Join([]string{
		codecVersion,
		id.SessionID,
		id.Action,
		base64.RawURLEncoding.EncodeToString([]byte(id.Payload)),
		id.Phase,
		strconv.FormatInt(id.Version, 10),
	}, delimiter)

	if len(encoded) > maxLength {
		return "", ErrTooLong
	}

	return encoded, nil
}

// Decode parses a wire identifier back into its fields
func Decode(raw string) (*ActionID, error) {
	parts := strings.Split(raw, delimiter)
	if len(parts) == 0 || parts[0] != codecVersion {
		return nil, ErrUnknownVersion
	}

	if len(parts) != fieldCount {
		return nil, ErrMalformedID
	}

	if parts[1] == "" || parts[2] == "" {
		return nil, ErrMalformedID
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, ErrMalformedID
	}

	version, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return nil, ErrMalformedID
	}

	return &ActionID{
		SessionID: parts[1],
		Action:    parts[2],
		Payload:   string(payload),
		Phase:     parts[4],
		Version:   version,
	}, nil
}
