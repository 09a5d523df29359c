package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintpoker-server/internal/core"
	"sprintpoker-server/internal/names"
	"sprintpoker-server/internal/protocol"
)

type mockConn struct {
	mu     sync.Mutex
	frames []protocol.Envelope
	fail   bool
}

func (m *mockConn) TrySend(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection closed")
	}
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	m.frames = append(m.frames, env)
	return nil
}

// lastOfType returns the most recent frame of the given type.
func (m *mockConn) lastOfType(msgType string) (protocol.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.frames) - 1; i >= 0; i-- {
		if m.frames[i].Type == msgType {
			return m.frames[i], true
		}
	}
	return protocol.Envelope{}, false
}

func (m *mockConn) count(msgType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.frames {
		if f.Type == msgType {
			n++
		}
	}
	return n
}

var testPoints = []string{"0.5", "1", "2", "3", "5", "8"}

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(
		core.NewRegistry(),
		core.NewSessions(),
		names.NewGenerator([]string{"banana"}),
		testPoints,
	)
}

func send(t *testing.T, d *Dispatcher, sid core.SessionID, conn *mockConn, msgType string, data any) {
	t.Helper()
	raw, err := protocol.Marshal(msgType, data)
	require.NoError(t, err)
	d.Handle(sid, conn, raw)
}

func decodeData(t *testing.T, env protocol.Envelope, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func errorMessage(t *testing.T, conn *mockConn) string {
	t.Helper()
	env, ok := conn.lastOfType(protocol.TypeError)
	require.True(t, ok, "expected an error frame")
	var p protocol.ErrorData
	decodeData(t, env, &p)
	return p.Message
}

func signIn(t *testing.T, d *Dispatcher, sid core.SessionID, conn *mockConn, game, nickname string) protocol.SignedInData {
	t.Helper()
	send(t, d, sid, conn, protocol.TypeSignIn, protocol.SignInRequest{Game: game, Nickname: nickname})
	env, ok := conn.lastOfType(protocol.TypeYouSignedIn)
	require.True(t, ok, "expected youSignedIn")
	var p protocol.SignedInData
	decodeData(t, env, &p)
	return p
}

func TestSignInGeneratesGameName(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}

	resp := signIn(t, d, "s0", conn, "", "Taylor")

	assert.Equal(t, "banana", resp.Game, "name comes from the configured word pool")
	assert.Equal(t, testPoints, resp.Points)
	assert.Equal(t, "taylor", resp.Nickname)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "taylor", resp.Users[0].Nickname)
}

func TestSignInMultipleUsersOneGame(t *testing.T) {
	d := newTestDispatcher()
	avengers := []string{
		"Hank Pym", "Janet van Dyne", "Tony Stark",
		"Bruce Banner", "Thor Odinson", "Richard Milhouse",
	}
	conns := make([]*mockConn, len(avengers))
	for i, nickname := range avengers {
		conns[i] = &mockConn{}
		signIn(t, d, core.SessionID(fmt.Sprintf("s%d", i)), conns[i], "Avengers", nickname)
	}

	env, ok := conns[0].lastOfType(protocol.TypeSomeoneSignedIn)
	require.True(t, ok)
	var p protocol.SomeoneSignedInData
	decodeData(t, env, &p)
	require.Len(t, p.Users, 6)

	seen := make(map[string]struct{})
	for _, u := range p.Users {
		assert.Equal(t, u.Nickname, names.Format(u.Nickname), "nicknames arrive canonical")
		_, dup := seen[u.Nickname]
		assert.False(t, dup, "nickname %q appears twice", u.Nickname)
		seen[u.Nickname] = struct{}{}
	}
}

func TestSignInDuplicateNickname(t *testing.T) {
	d := newTestDispatcher()
	first := &mockConn{}
	second := &mockConn{}

	signIn(t, d, "s0", first, "asdf", "Taylor")
	send(t, d, "s1", second, protocol.TypeSignIn, protocol.SignInRequest{Game: "asdf", Nickname: "TaYlOr"})

	assert.Equal(t, "This username is unavailable; please pick another.", errorMessage(t, second))

	g, ok := d.Games.Get("asdf")
	require.True(t, ok)
	assert.Equal(t, 1, g.MemberCount())
}

func TestSignInWatcher(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	send(t, d, "s0", conn, protocol.TypeSignIn, protocol.SignInRequest{Game: "asdf", Nickname: "Taylor", Watch: true})

	env, ok := conn.lastOfType(protocol.TypeYouSignedIn)
	require.True(t, ok)
	var p protocol.SignedInData
	decodeData(t, env, &p)
	require.Len(t, p.Users, 1)
	assert.True(t, p.Users[0].Watch)
}

func TestUnknownMessageType(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}

	d.Handle("s0", conn, []byte(`{"type":"HAHAHAHAHEYTHERE"}`))

	assert.Equal(t, "HAHAHAHAHEYTHERE is not a message type this service is prepared for!", errorMessage(t, conn))
}

func TestMalformedEnvelope(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}

	d.Handle("s0", conn, []byte(`this is not json`))

	assert.Contains(t, errorMessage(t, conn), "is not a message type this service is prepared for!")
}

func TestPlaceVote(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	// Clients send numeric votes too; the whitelist compares strings.
	send(t, d, "s0", conn, protocol.TypePlaceVote, map[string]any{
		"game":     resp.Game,
		"nickname": resp.Nickname,
		"vote":     1,
	})

	_, ok := conn.lastOfType(protocol.TypeYouVoted)
	assert.True(t, ok)

	env, ok := conn.lastOfType(protocol.TypeSomeoneVoted)
	require.True(t, ok)
	var p protocol.VotesData
	decodeData(t, env, &p)
	assert.Equal(t, map[string]string{"taylor": "1"}, p.Votes)
}

func TestPlaceVoteInvalidValue(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game:     resp.Game,
		Nickname: resp.Nickname,
		Vote:     "🍰",
	})

	assert.Equal(t, "🍰 is not a valid vote!", errorMessage(t, conn))

	g, ok := d.Games.Get(resp.Game)
	require.True(t, ok)
	assert.Empty(t, g.VotesSnapshot(), "invalid vote must not be stored")
}

func TestPlaceVoteUnknownGame(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game:     "sandwich",
		Nickname: resp.Nickname,
		Vote:     "5",
	})

	assert.Equal(t, "sandwich does not exist!", errorMessage(t, conn))
}

func TestRevealWithoutVotes(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeReveal, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})

	assert.Equal(t, "taylor has no votes to reveal!", errorMessage(t, conn))
}

func TestRevealUnknownGame(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeReveal, protocol.GameRequest{Game: "notagame", Nickname: resp.Nickname})

	assert.Equal(t, "notagame does not exist!", errorMessage(t, conn))
}

func TestRevealBroadcastsWithoutVoteData(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: resp.Nickname, Vote: "3",
	})
	send(t, d, "s0", conn, protocol.TypeReveal, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})

	env, ok := conn.lastOfType(protocol.TypeRevealDone)
	require.True(t, ok)
	var payload map[string]any
	decodeData(t, env, &payload)
	assert.Empty(t, payload, "reveal carries no vote content")
}

func TestResetClearsVotes(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: resp.Nickname, Vote: "3",
	})
	send(t, d, "s0", conn, protocol.TypeReset, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})

	env, ok := conn.lastOfType(protocol.TypeResetDone)
	require.True(t, ok)
	var p protocol.VotesData
	decodeData(t, env, &p)
	assert.Empty(t, p.Votes)

	g, _ := d.Games.Get(resp.Game)
	assert.Empty(t, g.VotesSnapshot())
}

func TestResetUnknownGame(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeReset, protocol.GameRequest{Game: "notanactualgame", Nickname: resp.Nickname})

	assert.Equal(t, "notanactualgame does not exist!", errorMessage(t, conn))
}

func TestRevokeVote(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: resp.Nickname, Vote: "3",
	})
	send(t, d, "s0", conn, protocol.TypeRevokeVote, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})

	env, ok := conn.lastOfType(protocol.TypeClientRevoke)
	require.True(t, ok)
	var p protocol.VotesData
	decodeData(t, env, &p)
	assert.Empty(t, p.Votes)
}

func TestRevokeVoteWithoutVote(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeRevokeVote, protocol.GameRequest{Game: resp.Game, Nickname: "Luke"})

	assert.Equal(t, "Luke has no votes to revoke!", errorMessage(t, conn))
}

func TestRevokeVoteTwice(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: resp.Nickname, Vote: "3",
	})
	send(t, d, "s0", conn, protocol.TypeRevokeVote, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})
	send(t, d, "s0", conn, protocol.TypeRevokeVote, protocol.GameRequest{Game: resp.Game, Nickname: resp.Nickname})

	assert.Equal(t, "taylor has no votes to revoke!", errorMessage(t, conn))
}

func TestDisconnectCleansUp(t *testing.T) {
	d := newTestDispatcher()
	taylor := &mockConn{}
	flip := &mockConn{}

	resp := signIn(t, d, "s0", taylor, "", "Taylor")
	signIn(t, d, "s1", flip, resp.Game, "flip")
	send(t, d, "s1", flip, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: "flip", Vote: "3",
	})
	send(t, d, "s1", flip, protocol.TypeDisconnect, protocol.GameRequest{Game: resp.Game, Nickname: "flip"})

	env, ok := taylor.lastOfType(protocol.TypeClientDisconnect)
	require.True(t, ok)
	var p protocol.ClientDisconnectData
	decodeData(t, env, &p)
	assert.Equal(t, "flip", p.Nickname)
	require.Len(t, p.Users, 1)
	assert.Equal(t, "taylor", p.Users[0].Nickname)

	g, _ := d.Games.Get(resp.Game)
	assert.False(t, g.HasUser("flip"))
	assert.NotContains(t, g.VotesSnapshot(), "flip")
}

func TestDisconnectTwice(t *testing.T) {
	d := newTestDispatcher()
	taylor := &mockConn{}
	flip := &mockConn{}

	resp := signIn(t, d, "s0", taylor, "", "Taylor")
	signIn(t, d, "s1", flip, resp.Game, "flip")
	send(t, d, "s1", flip, protocol.TypeDisconnect, protocol.GameRequest{Game: resp.Game, Nickname: "flip"})
	send(t, d, "s1", flip, protocol.TypeDisconnect, protocol.GameRequest{Game: resp.Game, Nickname: "flip"})

	assert.Equal(t, "flip is not a part of "+resp.Game+"!", errorMessage(t, flip))
}

func TestDisconnectUnknownMember(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeDisconnect, protocol.GameRequest{Game: resp.Game, Nickname: "notauser"})

	assert.Equal(t, "notauser is not a part of "+resp.Game+"!", errorMessage(t, conn))
}

func TestDisconnectUnknownGame(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeDisconnect, protocol.GameRequest{Game: "notanactualgame", Nickname: "taylor"})

	assert.Equal(t, "notanactualgame does not exist!", errorMessage(t, conn))
}

func TestGetPlayerCount(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}
	resp := signIn(t, d, "s0", conn, "", "Taylor")

	send(t, d, "s0", conn, protocol.TypeGetPlayerCount, protocol.PlayerCountRequest{Game: resp.Game})

	env, ok := conn.lastOfType(protocol.TypePlayerCount)
	require.True(t, ok)
	var p protocol.PlayerCountData
	decodeData(t, env, &p)
	assert.Equal(t, 1, p.Count)
}

func TestGetPlayerCountUnknownGame(t *testing.T) {
	d := newTestDispatcher()
	conn := &mockConn{}

	send(t, d, "s0", conn, protocol.TypeGetPlayerCount, protocol.PlayerCountRequest{Game: "nowhere"})

	env, ok := conn.lastOfType(protocol.TypePlayerCount)
	require.True(t, ok, "absent game still gets a count, never an error")
	var p protocol.PlayerCountData
	decodeData(t, env, &p)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0, conn.count(protocol.TypeError))
}

func TestDropSessionPrunesMember(t *testing.T) {
	d := newTestDispatcher()
	taylor := &mockConn{}
	flip := &mockConn{}

	resp := signIn(t, d, "s0", taylor, "", "Taylor")
	signIn(t, d, "s1", flip, resp.Game, "flip")
	send(t, d, "s1", flip, protocol.TypePlaceVote, protocol.PlaceVoteRequest{
		Game: resp.Game, Nickname: "flip", Vote: "3",
	})

	d.DropSession("s1")

	g, _ := d.Games.Get(resp.Game)
	assert.False(t, g.HasUser("flip"))
	assert.NotContains(t, g.VotesSnapshot(), "flip")

	env, ok := taylor.lastOfType(protocol.TypeClientDisconnect)
	require.True(t, ok)
	var p protocol.ClientDisconnectData
	decodeData(t, env, &p)
	assert.Equal(t, "flip", p.Nickname)
}

func TestDropSessionUnknownSession(t *testing.T) {
	d := newTestDispatcher()
	assert.NotPanics(t, func() { d.DropSession("never-signed-in") })
}

func TestErrorReplyToDeadConnection(t *testing.T) {
	d := newTestDispatcher()
	dead := &mockConn{fail: true}

	assert.NotPanics(t, func() {
		d.Handle("s0", dead, []byte(`{"type":"nonsense"}`))
	})
}
