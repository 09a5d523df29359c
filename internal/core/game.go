package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"sprintpoker-server/internal/domain"
	"sprintpoker-server/internal/names"
)

type member struct {
	user domain.User
	conn Sender
}

// Game is a threadsafe in-memory voting session. It owns its member list
// (ordered by join time, the order is visible in broadcasts) and the vote
// map. Vote keys are always a subset of member nicknames: leaving a game
// drops the member's vote in the same critical section.
type Game struct {
	name string

	mu      sync.RWMutex
	members []*member
	votes   map[string]string
}

func NewGame(name string) *Game {
	return &Game{
		name:  name,
		votes: make(map[string]string),
	}
}

func (g *Game) Name() string { return g.name }

// Join resolves rawNickname against the current members and, if it is
// unique, appends the new member. Resolution and insertion happen under
// one lock so two concurrent sign-ins cannot both claim the same name.
func (g *Game) Join(rawNickname string, watch bool, conn Sender) (domain.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	taken := make(map[string]struct{}, len(g.members))
	for _, m := range g.members {
		taken[m.user.Nickname] = struct{}{}
	}
	nickname, ok := names.Unique(rawNickname, taken)
	if !ok {
		return domain.User{}, ErrNicknameTaken()
	}
	u := domain.NewUser(nickname, g.name, watch)
	g.members = append(g.members, &member{user: u, conn: conn})
	log.Info().Str("module", "core.game").Str("game", g.name).Str("nickname", nickname).Msg("member joined")
	return u, nil
}

func (g *Game) HasUser(nickname string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.indexOf(nickname) >= 0
}

func (g *Game) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// RecordVote stores a vote for a current member. Non-members cannot hold
// votes, that keeps the vote map a subset of the member list.
func (g *Game) RecordVote(nickname, vote string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(nickname) < 0 {
		return ErrNotAMember(nickname, g.name)
	}
	g.votes[nickname] = vote
	return nil
}

// RevokeVote removes nickname's vote if one exists.
func (g *Game) RevokeVote(nickname string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, voted := g.votes[nickname]; !voted {
		return ErrNoVoteToRevoke(nickname)
	}
	delete(g.votes, nickname)
	return nil
}

// ResetVotes clears the whole vote map for the next round.
func (g *Game) ResetVotes() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.votes)
}

func (g *Game) HasVotes() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.votes) > 0
}

// RemoveMember drops the member with the given canonical nickname and any
// vote they held. Reports false when no such member exists.
func (g *Game) RemoveMember(nickname string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(nickname)
	if i < 0 {
		return false
	}
	g.members = append(g.members[:i], g.members[i+1:]...)
	delete(g.votes, nickname)
	log.Info().Str("module", "core.game").Str("game", g.name).Str("nickname", nickname).Msg("member removed")
	return true
}

// Broadcast pushes data to every member in join order. A connection that
// refuses the frame is skipped, the rest still receive it. Best effort,
// no retry.
func (g *Game) Broadcast(data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	dropped := 0
	for _, m := range g.members {
		if err := m.conn.TrySend(data); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warn().Str("module", "core.game").Str("game", g.name).Int("dropped", dropped).Msg("broadcast dropped frames")
	}
}

// UsersSnapshot returns the members in join order.
func (g *Game) UsersSnapshot() []domain.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.User, 0, len(g.members))
	for _, m := range g.members {
		out = append(out, m.user)
	}
	return out
}

// VotesSnapshot returns a copy of the current vote map.
func (g *Game) VotesSnapshot() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]string, len(g.votes))
	for nick, vote := range g.votes {
		out[nick] = vote
	}
	return out
}

// indexOf expects g.mu to be held.
func (g *Game) indexOf(nickname string) int {
	for i, m := range g.members {
		if m.user.Nickname == nickname {
			return i
		}
	}
	return -1
}
