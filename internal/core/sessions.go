package core

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Game     string
	Nickname string
}

// Sessions tracks which game and nickname each live connection signed in
// as. The websocket adapter uses it to run the normal disconnect
// transition when a socket closes without an explicit disconnect command.
type Sessions struct {
	mu    sync.RWMutex
	bound map[SessionID]sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{bound: make(map[SessionID]sessionEntry)}
}

func (s *Sessions) Bind(sid SessionID, game, nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound[sid] = sessionEntry{Game: game, Nickname: nickname}
	log.Info().Str("module", "core.sessions").Str("sid", string(sid)).Str("game", game).Str("nickname", nickname).Msg("bound session")
}

func (s *Sessions) Lookup(sid SessionID) (game, nickname string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.bound[sid]
	return e.Game, e.Nickname, ok
}

func (s *Sessions) Unbind(sid SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bound, sid)
}
