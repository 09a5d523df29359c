// Package protocol defines the JSON wire shapes exchanged with clients.
// Every frame, inbound or outbound, is an Envelope; the command set is
// closed and enumerated here.
package protocol

import (
	"encoding/json"

	"sprintpoker-server/internal/domain"
)

// Inbound command types.
const (
	TypeSignIn         = "signIn"
	TypePlaceVote      = "placeVote"
	TypeReveal         = "reveal"
	TypeReset          = "reset"
	TypeRevokeVote     = "revokeVote"
	TypeDisconnect     = "disconnect"
	TypeGetPlayerCount = "getPlayerCount"
)

// Outbound result types.
const (
	TypeError            = "error"
	TypeYouSignedIn      = "youSignedIn"
	TypeSomeoneSignedIn  = "someoneSignedIn"
	TypeYouVoted         = "youVoted"
	TypeSomeoneVoted     = "someoneVoted"
	TypeResetDone        = "reset"
	TypeRevealDone       = "reveal"
	TypeClientRevoke     = "clientRevoke"
	TypeClientDisconnect = "clientDisconnect"
	TypePlayerCount      = "playerCount"
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Marshal wraps data in an envelope of the given type and encodes it.
func Marshal(msgType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}

// Vote is a point value as sent by clients. Clients send both "3" and 3;
// the whitelist comparison is on strings, so both decode to "3".
type Vote string

func (v *Vote) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Vote(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = Vote(n.String())
	return nil
}

// Inbound payloads.

type SignInRequest struct {
	Game     string `json:"game"`
	Nickname string `json:"nickname"`
	Watch    bool   `json:"watch"`
}

type PlaceVoteRequest struct {
	Game     string `json:"game"`
	Nickname string `json:"nickname"`
	Vote     Vote   `json:"vote"`
}

type GameRequest struct {
	Game     string `json:"game"`
	Nickname string `json:"nickname"`
}

type PlayerCountRequest struct {
	Game string `json:"game"`
}

// Outbound payloads.

type ErrorData struct {
	Message string `json:"message"`
}

type SignedInData struct {
	Nickname string        `json:"nickname"`
	Points   []string      `json:"points"`
	Users    []domain.User `json:"users"`
	Game     string        `json:"game"`
}

type SomeoneSignedInData struct {
	Nickname string        `json:"nickname"`
	Users    []domain.User `json:"users"`
}

type VotesData struct {
	Votes map[string]string `json:"votes"`
}

type ClientDisconnectData struct {
	Nickname string        `json:"nickname"`
	Users    []domain.User `json:"users"`
}

type PlayerCountData struct {
	Count int `json:"count"`
}
