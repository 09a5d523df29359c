package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"sprintpoker-server/internal/core"
	"sprintpoker-server/internal/names"
	"sprintpoker-server/internal/protocol"
)

// handleSignIn resolves the target game (formatted client choice, or a
// generated name when none is given), creates it on first use and claims
// the nickname inside it.
func (d *Dispatcher) handleSignIn(sid core.SessionID, origin core.Sender, data json.RawMessage) error {
	var p protocol.SignInRequest
	decode(data, &p)

	gameName := names.Format(p.Game)
	if gameName == "" {
		gameName = d.Names.Next()
	}
	g := d.Games.GetOrCreate(gameName)

	user, err := g.Join(p.Nickname, p.Watch, origin)
	if err != nil {
		return err
	}
	d.Sessions.Bind(sid, gameName, user.Nickname)
	log.Info().Str("module", "app.dispatcher").Str("game", gameName).Str("nickname", user.Nickname).Bool("watch", user.Watch).Msg("signed in")

	users := g.UsersSnapshot()
	d.send(origin, protocol.TypeYouSignedIn, protocol.SignedInData{
		Nickname: user.Nickname,
		Points:   d.Points,
		Users:    users,
		Game:     gameName,
	})
	d.broadcast(g, protocol.TypeSomeoneSignedIn, protocol.SomeoneSignedInData{
		Nickname: user.Nickname,
		Users:    users,
	})
	return nil
}
