package models

import (
	"errors"
	"strings"
)

// ErrInvalidState is returned when a state value does not carry all four fields.
var ErrInvalidState = errors.New("invalid oauth state")

// OAuthState is carried through the Swit and Asana consent redirects so the
// action that required authentication can be resumed afterwards.
type OAuthState struct {
	UserID   string
	Action   string
	Language string
	Channel  string
}

// String encodes the state as user_id:action:user_language:channel_id.
func (s OAuthState) String() string {
	return strings.Join([]string{s.UserID, s.Action, s.Language, s.Channel}, ":")
}

// ParseOAuthState decodes a value produced by OAuthState.String.
func ParseOAuthState(raw string) (OAuthState, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return OAuthState{}, ErrInvalidState
	}
	state := OAuthState{
		UserID:   parts[0],
		Action:   parts[1],
		Language: parts[2],
		Channel:  parts[3],
	}
	if state.UserID == "" || state.Action == "" {
		return OAuthState{}, ErrInvalidState
	}
	return state, nil
}
