package controller

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/espn"
	"github.com/morganjb52/ffb/platforms/platformerr"
	"github.com/morganjb52/ffb/platforms/sleeper"
	"github.com/morganjb52/ffb/platforms/yahoo"
	"github.com/morganjb52/ffb/store"
	"github.com/morganjb52/ffb/testutils"
)

type testEnv struct {
	ctrl C
	clk  *clock.Mock
	espn *testutils.FakeESPNServer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	fakeSleeper := testutils.NewFakeSleeperServer()
	t.Cleanup(fakeSleeper.Close)
	fakeYahoo := testutils.NewFakeYahooServer()
	t.Cleanup(fakeYahoo.Close)
	fakeESPN := testutils.NewFakeESPNServer()
	t.Cleanup(fakeESPN.Close)

	sessions, err := store.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	clk := clock.NewMock()
	espnClient, err := espn.New(ctx, clk, sessions,
		espn.WithRelays(espn.RelaysForTest(fakeESPN.HeaderRelayFormat(), fakeESPN.PlainRelayFormat())))
	if err != nil {
		t.Fatalf("unexpected error creating espn client: %v", err)
	}

	ctrl, err := New(clk, sleeper.NewForTest(fakeSleeper.URL()), yahoo.NewForTest(fakeYahoo.URL()), espnClient, fakeYahoo.OAuthConfig())
	if err != nil {
		t.Fatalf("unexpected error creating controller: %v", err)
	}

	return &testEnv{ctrl: ctrl, clk: clk, espn: fakeESPN}
}

func TestConnectPlatform_sleeper(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
		"week":     "4",
	})

	if !result.Success {
		t.Fatalf("expected a successful connection, got error: %s", result.Error)
	}
	if !strings.HasPrefix(result.Team.ID, "sleeper-") {
		t.Errorf("team id should carry the platform prefix, got: %s", result.Team.ID)
	}
	if result.Team.Name != "Crunch Time" {
		t.Errorf("unexpected team name: %s", result.Team.Name)
	}
	if result.Team.LeagueName != "The Gridiron Gang" {
		t.Errorf("unexpected league name: %s", result.Team.LeagueName)
	}
	if result.Team.Record != (model.Record{Wins: 5, Losses: 2, Ties: 0}) {
		t.Errorf("unexpected record: %s", result.Team.Record.String())
	}
	if result.Lineup == nil || len(result.Lineup.Starters) != 9 {
		t.Errorf("expected a full lineup with the connection, got: %+v", result.Lineup)
	}
	if result.Lineup.TeamID != result.Team.ID {
		t.Errorf("lineup should reference the prefixed team id, got: %s", result.Lineup.TeamID)
	}
}

func TestConnectPlatform_sleeperBadLeague(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformSleeper, map[string]string{
		"leagueId": "987654321",
		"teamId":   "1",
	})

	if result.Success {
		t.Fatal("expected the connection to fail")
	}
	if !strings.Contains(result.Error, "not found") {
		t.Errorf("expected a not-found error message, got: %s", result.Error)
	}
}

func TestConnectPlatform_sleeperMissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
	})

	if result.Success {
		t.Fatal("expected the connection to fail")
	}
	if !strings.Contains(result.Error, "teamId") {
		t.Errorf("the error should name the missing credential, got: %s", result.Error)
	}
}

func TestConnectPlatform_yahoo(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformYahoo, map[string]string{
		"accessToken": testutils.YahooAccessToken,
		"leagueId":    testutils.YahooLeagueID,
		"teamId":      testutils.YahooTeamKey,
		"week":        "4",
	})

	if !result.Success {
		t.Fatalf("expected a successful connection, got error: %s", result.Error)
	}
	if result.Team.ID != "yahoo-449.l.431.t.1" {
		t.Errorf("unexpected team id: %s", result.Team.ID)
	}
	if result.Team.Name != "Bench Warmers" {
		t.Errorf("unexpected team name: %s", result.Team.Name)
	}
	if result.Team.Record != (model.Record{Wins: 6, Losses: 1, Ties: 0}) {
		t.Errorf("unexpected record: %s", result.Team.Record.String())
	}
}

func TestConnectPlatform_yahooMissingToken(t *testing.T) {
	clk := clock.NewMock()
	// a yahoo client pointed nowhere: credential validation must fail
	// before anything would dial
	ctrl, err := New(clk, nil, yahoo.NewForTest("http://invalid.invalid"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error creating controller: %v", err)
	}

	result := ctrl.ConnectPlatform(context.Background(), model.PlatformYahoo, map[string]string{
		"leagueId": testutils.YahooLeagueID,
		"teamId":   testutils.YahooTeamKey,
	})

	if result.Success {
		t.Fatal("expected the connection to fail")
	}
	if !strings.Contains(result.Error, "accessToken") {
		t.Errorf("the error should mention the missing token, got: %s", result.Error)
	}
}

func TestConnectPlatform_espn(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformESPN, map[string]string{
		"username": testutils.EspnUsername,
		"password": testutils.EspnPassword,
		"teamUrl":  "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3&seasonId=2025&scoringPeriodId=4",
	})

	if !result.Success {
		t.Fatalf("expected a successful connection, got error: %s", result.Error)
	}
	if result.Team.ID != "espn-3" {
		t.Errorf("unexpected team id: %s", result.Team.ID)
	}
	if result.Team.Name != "Touchdown Titans" {
		t.Errorf("unexpected team name: %s", result.Team.Name)
	}
	if result.Team.LeagueName != "Office Punishment League" {
		t.Errorf("expected the standings scrape to name the league, got: %q", result.Team.LeagueName)
	}
	if result.Team.OwnerID != "morgan" {
		t.Errorf("unexpected owner id: %s", result.Team.OwnerID)
	}
	if result.Lineup.Placeholder {
		t.Error("a parsed lineup must not be tagged as placeholder data")
	}
}

func TestConnectPlatform_espnNotAuthenticated(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformESPN, map[string]string{
		"teamUrl": "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3",
	})

	if result.Success {
		t.Fatal("expected the connection to fail")
	}
	if !strings.Contains(result.Error, "not authenticated") {
		t.Errorf("expected a not-authenticated error, got: %s", result.Error)
	}
	if env.espn.TeamRequests != 0 {
		t.Errorf("expected no network traffic, got %d requests", env.espn.TeamRequests)
	}
}

func TestConnectPlatform_unsupported(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformCBS, nil)
	if result.Success {
		t.Fatal("expected the connection to fail")
	}
	if !strings.Contains(result.Error, "not a supported platform") {
		t.Errorf("unexpected error message: %s", result.Error)
	}
}

func TestGetTeamLineup(t *testing.T) {
	env := newTestEnv(t)

	result := env.ctrl.ConnectPlatform(context.Background(), model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	lineup, err := env.ctrl.GetTeamLineup(context.Background(), result.Team.ID, 4)
	if err != nil {
		t.Fatalf("unexpected error getting lineup: %v", err)
	}
	if len(lineup.Starters) != 9 {
		t.Errorf("expected 9 starters, got %d", len(lineup.Starters))
	}
}

func TestGetTeamLineup_unknownTeam(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ctrl.GetTeamLineup(context.Background(), "sleeper-1", 4)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got: %v", err)
	}
}

func TestGetTeamLineup_invalidWeek(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ctrl.GetTeamLineup(context.Background(), "sleeper-1", 0); err == nil {
		t.Error("expected an error for week 0")
	}
	if _, err := env.ctrl.GetTeamLineup(context.Background(), "sleeper-1", 19); err == nil {
		t.Error("expected an error for week 19")
	}
}

func TestUpdateTeamLineup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sleeperResult := env.ctrl.ConnectPlatform(ctx, model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
	})
	if !sleeperResult.Success {
		t.Fatalf("unexpected connection error: %s", sleeperResult.Error)
	}

	// sleeper has no write API, the update degrades without an error
	applied, err := env.ctrl.UpdateTeamLineup(ctx, sleeperResult.Team.ID, 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Error("sleeper updates should not report success")
	}

	espnResult := env.ctrl.ConnectPlatform(ctx, model.PlatformESPN, map[string]string{
		"username": testutils.EspnUsername,
		"password": testutils.EspnPassword,
		"teamUrl":  "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3&seasonId=2025",
	})
	if !espnResult.Success {
		t.Fatalf("unexpected connection error: %s", espnResult.Error)
	}

	applied, err = env.ctrl.UpdateTeamLineup(ctx, espnResult.Team.ID, 4,
		map[model.Slot]model.Player{model.SLOT_RB1: {ID: "4241457"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Error("expected the espn update to be applied")
	}
	if !strings.Contains(env.espn.LastLineupForm, "RB1=4241457") {
		t.Errorf("expected the slot change in the posted form, got: %s", env.espn.LastLineupForm)
	}
}

func TestSyncTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.ctrl.ConnectPlatform(ctx, model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	sync := env.ctrl.SyncTeam(ctx, result.Team.ID, 4)
	if !sync.Success {
		t.Fatalf("expected a successful sync, got: %s", sync.Message)
	}
	if sync.ID == "" {
		t.Error("every sync result needs an id")
	}
	if sync.Platform != model.PlatformSleeper {
		t.Errorf("unexpected platform: %s", sync.Platform)
	}
	if !strings.Contains(sync.Message, "synced") {
		t.Errorf("unexpected message: %s", sync.Message)
	}

	team, err := env.ctrl.GetTeam(result.Team.ID)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}
	if team.LastSync.IsZero() {
		t.Error("a successful sync should stamp LastSync")
	}
}

func TestSyncTeam_unknownTeam(t *testing.T) {
	env := newTestEnv(t)

	sync := env.ctrl.SyncTeam(context.Background(), "espn-42", 4)
	if sync.Success {
		t.Fatal("expected the sync to fail")
	}
	if sync.ID == "" {
		t.Error("failed syncs are recorded with an id too")
	}
	if sync.Message == "" {
		t.Error("failed syncs need a message")
	}
}

func TestDisconnect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.ctrl.ConnectPlatform(ctx, model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	if err := env.ctrl.Disconnect(ctx, model.PlatformSleeper); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}
	if _, err := env.ctrl.GetTeam(result.Team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("disconnect should drop the platform's teams, got: %v", err)
	}
}

func TestDisconnect_espnClearsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.ctrl.ConnectPlatform(ctx, model.PlatformESPN, map[string]string{
		"username": testutils.EspnUsername,
		"password": testutils.EspnPassword,
		"teamUrl":  "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	if err := env.ctrl.Disconnect(ctx, model.PlatformESPN); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}

	reconnect := env.ctrl.ConnectPlatform(ctx, model.PlatformESPN, map[string]string{
		"teamUrl": "https://fantasy.espn.com/football/team?leagueId=99181&teamId=3",
	})
	if reconnect.Success {
		t.Error("reconnecting without credentials should fail after disconnect")
	}
}

func TestDisconnect_unsupported(t *testing.T) {
	env := newTestEnv(t)

	if err := env.ctrl.Disconnect(context.Background(), "myspace"); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

func TestRunPeriodicSyncs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.ctrl.ConnectPlatform(ctx, model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
		"week":     "4",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	shutdown := make(chan bool)
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go env.ctrl.RunPeriodicSyncs(5*time.Millisecond, shutdown, wg)

	deadline := time.Now().Add(2 * time.Second)
	synced := false
	for time.Now().Before(deadline) {
		team, err := env.ctrl.GetTeam(result.Team.ID)
		if err != nil {
			t.Fatalf("unexpected error getting team: %v", err)
		}
		if !team.LastSync.IsZero() {
			synced = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(shutdown)
	wg.Wait()

	if !synced {
		t.Error("expected a periodic sync to stamp LastSync")
	}
}

func TestGetTeamReturnsCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.ctrl.ConnectPlatform(ctx, model.PlatformSleeper, map[string]string{
		"leagueId": testutils.SleeperLeagueID,
		"teamId":   "1",
		"week":     "4",
	})
	if !result.Success {
		t.Fatalf("unexpected connection error: %s", result.Error)
	}

	// Mutating a returned team must not leak into the registry.
	before, err := env.ctrl.GetTeam(result.Team.ID)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}
	before.Name = "scribbled over"

	after, err := env.ctrl.GetTeam(result.Team.ID)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}
	if after.Name != "Crunch Time" {
		t.Errorf("registry entry was mutated through a returned copy: %s", after.Name)
	}

	// A sync updates the registry entry, not copies handed out earlier.
	if synced := env.ctrl.SyncTeam(ctx, result.Team.ID, 4); !synced.Success {
		t.Fatalf("unexpected sync failure: %s", synced.Message)
	}
	if !after.LastSync.IsZero() {
		t.Error("a copy fetched before the sync must be untouched")
	}

	fresh, err := env.ctrl.GetTeam(result.Team.ID)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}
	if fresh.LastSync.IsZero() {
		t.Error("a copy fetched after the sync should carry the timestamp")
	}

	for _, listed := range env.ctrl.ListTeams() {
		listed.Name = "scribbled over"
	}
	final, err := env.ctrl.GetTeam(result.Team.ID)
	if err != nil {
		t.Fatalf("unexpected error getting team: %v", err)
	}
	if final.Name != "Crunch Time" {
		t.Errorf("registry entry was mutated through ListTeams: %s", final.Name)
	}
}

func TestOAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	authURL, err := env.ctrl.OAuthStart(model.PlatformYahoo)
	if err != nil {
		t.Fatalf("unexpected error starting oauth: %v", err)
	}

	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("error parsing auth url: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatal("the auth url must carry a state parameter")
	}

	if err := env.ctrl.OAuthExchange(ctx, state, testutils.YahooAuthCode); err != nil {
		t.Fatalf("unexpected error exchanging code: %v", err)
	}

	// The minted token stands in for an omitted accessToken credential.
	result := env.ctrl.ConnectPlatform(ctx, model.PlatformYahoo, map[string]string{
		"leagueId": testutils.YahooLeagueID,
		"teamId":   testutils.YahooTeamKey,
		"week":     "4",
	})
	if !result.Success {
		t.Fatalf("expected the oauth token to authorize the connection, got: %s", result.Error)
	}
	if result.Team.Name != "Bench Warmers" {
		t.Errorf("unexpected team name: %s", result.Team.Name)
	}
}

func TestOAuthStart_unsupportedPlatform(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ctrl.OAuthStart(model.PlatformSleeper); err == nil {
		t.Error("expected an error for a platform without an oauth flow")
	}
}

func TestOAuthStart_notConfigured(t *testing.T) {
	ctrl, err := New(clock.NewMock(), nil, yahoo.NewForTest("http://invalid.invalid"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error creating controller: %v", err)
	}

	if _, err := ctrl.OAuthStart(model.PlatformYahoo); err == nil {
		t.Error("expected an error when no oauth config is set")
	}
}

func TestOAuthExchange_badState(t *testing.T) {
	env := newTestEnv(t)

	if err := env.ctrl.OAuthExchange(context.Background(), "never-issued", testutils.YahooAuthCode); err == nil {
		t.Error("expected an error for an unknown state")
	}
}

func TestOAuthExchange_expiredState(t *testing.T) {
	env := newTestEnv(t)

	authURL, err := env.ctrl.OAuthStart(model.PlatformYahoo)
	if err != nil {
		t.Fatalf("unexpected error starting oauth: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("error parsing auth url: %v", err)
	}
	state := u.Query().Get("state")

	env.clk.Add(6 * time.Minute)

	if err := env.ctrl.OAuthExchange(context.Background(), state, testutils.YahooAuthCode); err == nil {
		t.Error("expected an error for an expired state")
	}
}

func TestOAuthExchange_badCode(t *testing.T) {
	env := newTestEnv(t)

	authURL, err := env.ctrl.OAuthStart(model.PlatformYahoo)
	if err != nil {
		t.Fatalf("unexpected error starting oauth: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("error parsing auth url: %v", err)
	}
	state := u.Query().Get("state")

	err = env.ctrl.OAuthExchange(context.Background(), state, "wrong-code")
	var authErr *platformerr.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("expected an auth error for a rejected code, got: %v", err)
	}
}
