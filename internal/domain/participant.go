// Package domain holds the room and participant entities, their identifier
// and display-name rules, media flags and the protocol event names.
package domain

import "strings"

const (
	MaxParticipantIDLen = 64
	MaxDisplayNameLen   = 64
)

type ParticipantID string

// Flag names one of the media toggles a participant advertises to the room.
type Flag int

const (
	FlagAudio Flag = iota
	FlagVideo
	FlagScreenSharing
)

func (f Flag) String() string {
	switch f {
	case FlagAudio:
		return "audio"
	case FlagVideo:
		return "video"
	case FlagScreenSharing:
		return "screen_sharing"
	default:
		return "unknown"
	}
}

type MediaState struct {
	AudioEnabled  bool `json:"audioEnabled"`
	VideoEnabled  bool `json:"videoEnabled"`
	ScreenSharing bool `json:"screenSharing"`
}

// DefaultMediaState is what a participant starts with: mic and camera on, no screen share.
func DefaultMediaState() MediaState {
	return MediaState{AudioEnabled: true, VideoEnabled: true}
}

func (s *MediaState) Set(f Flag, v bool) {
	switch f {
	case FlagAudio:
		s.AudioEnabled = v
	case FlagVideo:
		s.VideoEnabled = v
	case FlagScreenSharing:
		s.ScreenSharing = v
	}
}

// Participant is one client's presence in a room.
// No transport or lifecycle logic here.
type Participant struct {
	ID          ParticipantID
	DisplayName string
	Media       MediaState
}

// NewParticipant validates identity fields and applies default media flags.
func NewParticipant(id ParticipantID, displayName string) (*Participant, error) {
	if err := ValidateParticipantID(id); err != nil {
		return nil, err
	}
	name, err := NormalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	return &Participant{ID: id, DisplayName: name, Media: DefaultMediaState()}, nil
}

func ValidateParticipantID(id ParticipantID) error {
	if len(id) == 0 {
		return ErrParticipantIDEmpty
	}
	if len(id) > MaxParticipantIDLen {
		return ErrParticipantIDTooLong
	}
	return nil
}

func ValidateRoomID(id RoomID) error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}

// NormalizeDisplayName trims surrounding whitespace and enforces length limits.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", ErrDisplayNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
