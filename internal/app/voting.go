package app

import (
	"encoding/json"
	"slices"

	"sprintpoker-server/internal/core"
	"sprintpoker-server/internal/protocol"
)

func (d *Dispatcher) handlePlaceVote(origin core.Sender, data json.RawMessage) error {
	var p protocol.PlaceVoteRequest
	decode(data, &p)

	g, ok := d.Games.Get(p.Game)
	if !ok {
		return core.ErrGameNotFound(p.Game)
	}
	vote := string(p.Vote)
	if !slices.Contains(d.Points, vote) {
		return core.ErrInvalidVote(vote)
	}
	if err := g.RecordVote(p.Nickname, vote); err != nil {
		return err
	}

	d.send(origin, protocol.TypeYouVoted, struct{}{})
	d.broadcast(g, protocol.TypeSomeoneVoted, protocol.VotesData{Votes: g.VotesSnapshot()})
	return nil
}

func (d *Dispatcher) handleReveal(data json.RawMessage) error {
	var p protocol.GameRequest
	decode(data, &p)

	g, ok := d.Games.Get(p.Game)
	if !ok {
		return core.ErrGameNotFound(p.Game)
	}
	if !g.HasVotes() {
		return core.ErrNoVotesToReveal(p.Nickname)
	}

	// The payload stays empty on purpose: clients already hold the vote
	// map and only need the signal to show it.
	d.broadcast(g, protocol.TypeRevealDone, struct{}{})
	return nil
}

func (d *Dispatcher) handleReset(data json.RawMessage) error {
	var p protocol.GameRequest
	decode(data, &p)

	g, ok := d.Games.Get(p.Game)
	if !ok {
		return core.ErrGameNotFound(p.Game)
	}
	g.ResetVotes()

	d.broadcast(g, protocol.TypeResetDone, protocol.VotesData{Votes: g.VotesSnapshot()})
	return nil
}

func (d *Dispatcher) handleRevokeVote(data json.RawMessage) error {
	var p protocol.GameRequest
	decode(data, &p)

	g, ok := d.Games.Get(p.Game)
	if !ok {
		return core.ErrGameNotFound(p.Game)
	}
	if err := g.RevokeVote(p.Nickname); err != nil {
		return err
	}

	d.broadcast(g, protocol.TypeClientRevoke, protocol.VotesData{Votes: g.VotesSnapshot()})
	return nil
}
