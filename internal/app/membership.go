package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"sprintpoker-server/internal/core"
	"sprintpoker-server/internal/protocol"
)

func (d *Dispatcher) handleDisconnect(sid core.SessionID, data json.RawMessage) error {
	var p protocol.GameRequest
	decode(data, &p)

	g, ok := d.Games.Get(p.Game)
	if !ok {
		return core.ErrGameNotFound(p.Game)
	}
	if !g.RemoveMember(p.Nickname) {
		return core.ErrNotAMember(p.Nickname, p.Game)
	}
	if game, nickname, bound := d.Sessions.Lookup(sid); bound && game == p.Game && nickname == p.Nickname {
		d.Sessions.Unbind(sid)
	}

	d.broadcast(g, protocol.TypeClientDisconnect, protocol.ClientDisconnectData{
		Nickname: p.Nickname,
		Users:    g.UsersSnapshot(),
	})
	return nil
}

func (d *Dispatcher) handlePlayerCount(origin core.Sender, data json.RawMessage) error {
	var p protocol.PlayerCountRequest
	decode(data, &p)

	count := 0
	if g, ok := d.Games.Get(p.Game); ok {
		count = g.MemberCount()
	}
	d.send(origin, protocol.TypePlayerCount, protocol.PlayerCountData{Count: count})
	return nil
}

// DropSession runs the disconnect transition for a connection that went
// away without sending an explicit disconnect command. No-op when the
// session never signed in.
func (d *Dispatcher) DropSession(sid core.SessionID) {
	game, nickname, ok := d.Sessions.Lookup(sid)
	if !ok {
		return
	}
	d.Sessions.Unbind(sid)
	g, ok := d.Games.Get(game)
	if !ok {
		return
	}
	if !g.RemoveMember(nickname) {
		return
	}
	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Str("game", game).Str("nickname", nickname).Msg("pruned dead session")
	d.broadcast(g, protocol.TypeClientDisconnect, protocol.ClientDisconnectData{
		Nickname: nickname,
		Users:    g.UsersSnapshot(),
	})
}
