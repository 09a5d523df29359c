// Package domain contains entity types without logic, just meta-data.
package domain

// User is one signed-in participant of a game. Nickname and Game are
// canonical (already formatted); Watch marks a non-voting observer.
type User struct {
	Nickname string `json:"nickname"`
	Game     string `json:"game"`
	Watch    bool   `json:"watch"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(nickname, game string, watch bool) User {
	return User{Nickname: nickname, Game: game, Watch: watch}
}
