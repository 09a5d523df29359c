// Package app routes inbound client commands to state transitions on the
// game registry and fans results back out over the members' connections.
package app

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"sprintpoker-server/internal/core"
	"sprintpoker-server/internal/names"
	"sprintpoker-server/internal/protocol"
)

// Dispatcher is the single entry point for inbound messages. It owns no
// game state itself; everything lives in the registry so the dispatcher
// can stay stateless per message.
type Dispatcher struct {
	Games    *core.Registry
	Sessions *core.Sessions
	Names    *names.Generator
	Points   []string
}

func NewDispatcher(games *core.Registry, sessions *core.Sessions, gen *names.Generator, points []string) *Dispatcher {
	return &Dispatcher{
		Games:    games,
		Sessions: sessions,
		Names:    gen,
		Points:   points,
	}
}

// Handle parses one inbound frame and runs the matching command. Every
// failure ends as an error envelope to the origin connection only; other
// clients never hear about it.
func (d *Dispatcher) Handle(sid core.SessionID, origin core.Sender, raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("malformed envelope")
		d.sendError(origin, core.ErrUnknownType(env.Type))
		return
	}

	var err error
	switch env.Type {
	case protocol.TypeSignIn:
		err = d.handleSignIn(sid, origin, env.Data)
	case protocol.TypePlaceVote:
		err = d.handlePlaceVote(origin, env.Data)
	case protocol.TypeReveal:
		err = d.handleReveal(env.Data)
	case protocol.TypeReset:
		err = d.handleReset(env.Data)
	case protocol.TypeRevokeVote:
		err = d.handleRevokeVote(env.Data)
	case protocol.TypeDisconnect:
		err = d.handleDisconnect(sid, env.Data)
	case protocol.TypeGetPlayerCount:
		err = d.handlePlayerCount(origin, env.Data)
	default:
		err = core.ErrUnknownType(env.Type)
	}
	if err != nil {
		d.sendError(origin, err)
	}
}

// decode fills v from the envelope's data field. Bad payloads are logged
// and left as zero values; the handlers turn those into ordinary domain
// errors downstream.
func decode(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatcher").Msg("malformed payload")
	}
}

func (d *Dispatcher) send(conn core.Sender, msgType string, data any) {
	b, err := protocol.Marshal(msgType, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Str("type", msgType).Msg("marshal reply")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatcher").Str("type", msgType).Msg("reply dropped")
	}
}

func (d *Dispatcher) broadcast(g *core.Game, msgType string, data any) {
	b, err := protocol.Marshal(msgType, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Str("type", msgType).Msg("marshal broadcast")
		return
	}
	g.Broadcast(b)
}

func (d *Dispatcher) sendError(conn core.Sender, err error) {
	var de *core.DomainError
	if !errors.As(err, &de) {
		de = &core.DomainError{Code: core.CodePrecondition, Message: err.Error()}
	}
	d.send(conn, protocol.TypeError, protocol.ErrorData{Message: de.Message})
}
