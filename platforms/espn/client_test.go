package espn

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/itbasis/go-clock"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
	"github.com/morganjb52/ffb/store"
	"github.com/morganjb52/ffb/testutils"
)

const testTeamURL = "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3&seasonId=2025&scoringPeriodId=4"

func newTestClient(t *testing.T, fake *testutils.FakeESPNServer) *Client {
	t.Helper()
	ctx := context.Background()

	sessions, err := store.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	c, err := New(ctx, clock.NewMock(), sessions,
		WithRelays(RelaysForTest(fake.HeaderRelayFormat(), fake.PlainRelayFormat())))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	return c
}

func authenticate(t *testing.T, c *Client) {
	t.Helper()
	if err := c.Authenticate(context.Background(), testutils.EspnUsername, testutils.EspnPassword); err != nil {
		t.Fatalf("unexpected error authenticating: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	ctx := context.Background()
	if !c.Session().IsAuthenticated(ctx) {
		t.Error("session should be authenticated after login")
	}
	if c.Session().Cookie(ctx) != testutils.EspnSessionCookie {
		t.Errorf("unexpected session cookie: %s", c.Session().Cookie(ctx))
	}
	if c.Session().Username() != testutils.EspnUsername {
		t.Errorf("unexpected username: %s", c.Session().Username())
	}
}

func TestAuthenticate_badPassword(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)

	err := c.Authenticate(context.Background(), testutils.EspnUsername, "wrong")
	if err == nil {
		t.Fatal("expected an error, but got none")
	}
	var authErr *platformerr.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("expected an auth error, got: %v", err)
	}
	if c.Session().IsAuthenticated(context.Background()) {
		t.Error("a failed login must not authenticate the session")
	}
}

func TestAuthenticate_failureKeepsExistingSession(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	if err := c.Authenticate(context.Background(), testutils.EspnUsername, "wrong"); err == nil {
		t.Fatal("expected an error, but got none")
	}

	ctx := context.Background()
	if !c.Session().IsAuthenticated(ctx) {
		t.Error("the previous session should survive a failed re-login")
	}
	if c.Session().Cookie(ctx) != testutils.EspnSessionCookie {
		t.Errorf("the previous cookie should survive, got: %s", c.Session().Cookie(ctx))
	}
}

func TestGetTeamFromURL_notAuthenticated(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)

	_, _, err := c.GetTeamFromURL(context.Background(), testTeamURL)
	if !errors.Is(err, platformerr.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got: %v", err)
	}
	// the check has to happen before any fetch
	if fake.TeamRequests != 0 {
		t.Errorf("expected no network traffic, got %d requests", fake.TeamRequests)
	}
}

func TestGetTeamFromURL_structured(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	team, lineup, err := c.GetTeamFromURL(context.Background(), testTeamURL)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}

	if team.Name != "Touchdown Titans" {
		t.Errorf("unexpected team name: %s", team.Name)
	}
	if team.Record != (model.Record{Wins: 4, Losses: 3, Ties: 0}) {
		t.Errorf("unexpected record: %s", team.Record.String())
	}
	if team.ID != "3" || team.LeagueID != "99181" || team.Season != 2025 {
		t.Errorf("unexpected team identifiers: %+v", team)
	}

	if lineup.Placeholder {
		t.Error("a parsed lineup must not be tagged as placeholder data")
	}
	if lineup.Week != 4 {
		t.Errorf("expected week 4, got: %d", lineup.Week)
	}
	if len(lineup.Starters) != 9 {
		t.Fatalf("expected 9 starters, got %d", len(lineup.Starters))
	}
	if p := lineup.Starters[model.SLOT_QB]; p.Name != "Patrick Mahomes" {
		t.Errorf("expected Patrick Mahomes at QB, got: %s", p.Name)
	}
	if p := lineup.Starters[model.SLOT_FLEX]; p.Name != "Tyreek Hill" {
		t.Errorf("expected Tyreek Hill in the flex slot, got: %s", p.Name)
	}
	if p := lineup.Starters[model.SLOT_RB2]; p.Status != model.STATUS_QUESTIONABLE {
		t.Errorf("expected questionable status for Gibbs, got: %s", p.Status)
	}
	if p := lineup.Starters[model.SLOT_DEF]; p.Position != model.POS_DEF || p.Team != model.TEAM_SFO {
		t.Errorf("unexpected defense: %+v", p)
	}

	if len(lineup.Bench) != 2 {
		t.Fatalf("expected 2 bench players, got %d", len(lineup.Bench))
	}
	if math.Abs(lineup.ProjectedTotal-129.5) > 0.001 {
		t.Errorf("expected projected total 129.5, got: %f", lineup.ProjectedTotal)
	}
	if math.Abs(lineup.ActualTotal-123.3) > 0.001 {
		t.Errorf("expected actual total 123.3, got: %f", lineup.ActualTotal)
	}

	if !strings.Contains(fake.LastCookie, "espn_s2=") {
		t.Errorf("the session cookie should ride along on the fetch, got: %s", fake.LastCookie)
	}
}

func TestGetTeamFromURL_tableFallback(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)
	fake.Mode = "table"

	team, lineup, err := c.GetTeamFromURL(context.Background(), testTeamURL)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}

	if team.Name != "Gridiron Grinders" {
		t.Errorf("unexpected team name: %s", team.Name)
	}
	if team.Record != (model.Record{Wins: 5, Losses: 2, Ties: 0}) {
		t.Errorf("unexpected record: %s", team.Record.String())
	}
	if lineup.Placeholder {
		t.Error("a parsed lineup must not be tagged as placeholder data")
	}
	if len(lineup.Starters) != 9 {
		t.Fatalf("expected 9 starters, got %d", len(lineup.Starters))
	}
	if p := lineup.Starters[model.SLOT_QB]; p.Name != "Josh Allen" {
		t.Errorf("expected Josh Allen at QB, got: %s", p.Name)
	}
	// table rows carry no slot ids, so DeVonta Smith lands in WR3 by
	// position rather than the flex slot
	if p := lineup.Starters[model.SLOT_WR3]; p.Name != "DeVonta Smith" {
		t.Errorf("expected DeVonta Smith at WR3, got: %s", p.Name)
	}
	if len(lineup.Bench) != 3 {
		t.Errorf("expected 3 bench players, got %d", len(lineup.Bench))
	}
}

func TestGetTeamFromURL_loginPageMeansAuthError(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	// swap in relays that strip headers; the cookie never reaches the
	// server, which answers with its login page
	c.relays = RelaysForTest(fake.PlainRelayFormat(), fake.PlainRelayFormat())

	_, _, err := c.GetTeamFromURL(context.Background(), testTeamURL)
	if err == nil {
		t.Fatal("expected an error, but got none")
	}
	var authErr *platformerr.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("a login page is an auth failure, not a parse failure, got: %v", err)
	}
}

func TestGetTeamFromURL_placeholderFallback(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)
	fake.Mode = "empty"

	team, lineup, err := c.GetTeamFromURL(context.Background(), testTeamURL)
	if err != nil {
		t.Fatalf("an unparseable page should degrade, not error, got: %v", err)
	}

	if !lineup.Placeholder {
		t.Error("synthesized data must carry the placeholder tag")
	}
	if team.Name != "ESPN Team" {
		t.Errorf("unexpected fallback team name: %s", team.Name)
	}
	if len(lineup.Starters) != 9 {
		t.Errorf("expected a full placeholder lineup, got %d starters", len(lineup.Starters))
	}
	if p := lineup.Starters[model.SLOT_QB]; p.Name != "Placeholder QB" {
		t.Errorf("unexpected placeholder starter: %s", p.Name)
	}
}

func TestGetTeamFromURL_badURL(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	_, _, err := c.GetTeamFromURL(context.Background(), "https://fantasy.espn.com/football/team?seasonId=2025")
	if err == nil {
		t.Fatal("expected an error for a url without league and team ids")
	}
}

func TestUpdateLineup(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)
	authenticate(t, c)

	applied, err := c.UpdateLineup(context.Background(), "99181", "3", 4,
		map[model.Slot]model.Player{model.SLOT_RB1: {ID: "4241457"}})
	if err != nil {
		t.Fatalf("unexpected error updating lineup: %v", err)
	}
	if !applied {
		t.Error("expected the update to be applied")
	}
	if !strings.Contains(fake.LastLineupForm, "RB1=4241457") {
		t.Errorf("expected the slot change in the posted form, got: %s", fake.LastLineupForm)
	}
}

func TestUpdateLineup_notAuthenticated(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()

	c := newTestClient(t, fake)

	_, err := c.UpdateLineup(context.Background(), "99181", "3", 4, nil)
	if !errors.Is(err, platformerr.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got: %v", err)
	}
}

func TestGetLeague(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()
	c := newTestClient(t, fake)
	authenticate(t, c)

	snapshot, err := c.GetLeague(context.Background(), "99181", 2025)
	if err != nil {
		t.Fatalf("unexpected error getting league: %v", err)
	}

	if snapshot.Name != "Office Punishment League" {
		t.Errorf("unexpected league name: %s", snapshot.Name)
	}
	if len(snapshot.Teams) != 3 {
		t.Fatalf("expected 3 teams in the standings, got %d", len(snapshot.Teams))
	}

	entry := snapshot.FindTeam("3")
	if entry == nil {
		t.Fatal("team 3 missing from the standings")
	}
	if entry.Name != "Touchdown Titans" {
		t.Errorf("unexpected team name: %s", entry.Name)
	}
	if entry.OwnerID != "morgan" {
		t.Errorf("unexpected owner: %s", entry.OwnerID)
	}
	if entry.Record != (model.Record{Wins: 4, Losses: 3, Ties: 0}) {
		t.Errorf("unexpected record: %s", entry.Record.String())
	}
}

func TestGetLeague_notAuthenticated(t *testing.T) {
	fake := testutils.NewFakeESPNServer()
	defer fake.Close()
	c := newTestClient(t, fake)

	_, err := c.GetLeague(context.Background(), "99181", 2025)
	if !errors.Is(err, platformerr.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got: %v", err)
	}
}
