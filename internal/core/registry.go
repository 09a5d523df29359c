package core

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type GameInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// Registry maps canonical game names to live games. Games are created
// lazily on first sign-in and never evicted; an emptied game stays around
// for the life of the process.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]*Game)}
}

// GetOrCreate returns the game registered under name, creating it when
// absent. The double check keeps concurrent sign-ins targeting the same
// new name from both creating a game.
func (r *Registry) GetOrCreate(name string) *Game {
	r.mu.RLock()
	g, ok := r.games[name]
	r.mu.RUnlock()
	if ok {
		return g
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok = r.games[name]; ok {
		return g
	}
	g = NewGame(name)
	r.games[name] = g
	log.Info().Str("module", "core.registry").Str("game", name).Msg("game created")
	return g
}

func (r *Registry) Get(name string) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[name]
	return g, ok
}

func (r *Registry) List() []GameInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GameInfo, 0, len(r.games))
	for name, g := range r.games {
		out = append(out, GameInfo{Name: name, MemberCount: g.MemberCount()})
	}
	return out
}
