// Package yahoo talks to the Yahoo fantasy API. Every read needs an
// OAuth bearer token, so callers pass in an authorized *http.Client
// built by the oauth2 package; the client itself holds no token state.
package yahoo

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
	"github.com/morganjb52/ffb/platforms/yahoo/internal"
)

const YahooURL = "https://fantasysports.yahooapis.com"

type Client struct {
	url string
}

func New() (*Client, error) {
	return &Client{url: YahooURL}, nil
}

func NewForTest(url string) *Client {
	return &Client{url: url}
}

// Authenticate exchanges an authorization code for a bearer token.
// Most callers already hold a token and skip straight to BearerClient.
func (c *Client) Authenticate(ctx context.Context, config *oauth2.Config, code string) (*oauth2.Token, error) {
	if config == nil {
		return nil, &platformerr.AuthError{Platform: model.PlatformYahoo, Reason: "oauth is not configured"}
	}
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, &platformerr.AuthError{Platform: model.PlatformYahoo, Reason: "code exchange failed", Err: err}
	}
	return token, nil
}

// BearerClient wraps an access token in an *http.Client suitable for
// the read methods. Token refresh is out of scope; an expired token
// surfaces as an AuthError on the next read.
func BearerClient(ctx context.Context, accessToken string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = 8 * time.Second
	return client
}

func (c *Client) GetLeague(httpClient *http.Client, leagueID string, season int) (*model.LeagueSnapshot, error) {
	content, err := c.yahooRequest(httpClient, leagueID, "", "/fantasy/v2/league/nfl.l.%s/standings", leagueID)
	if err != nil {
		return nil, err
	}

	if content == nil ||
		content.League == nil ||
		content.League.Standings == nil ||
		content.League.Standings.Teams == nil ||
		content.League.Standings.Teams.Teams == nil {
		return nil, &platformerr.NotFoundError{Platform: model.PlatformYahoo, Kind: "league", ID: leagueID}
	}

	league := content.League
	if season == 0 {
		season = league.Season
	}
	snapshot := &model.LeagueSnapshot{
		ID:       leagueID,
		Name:     league.Name,
		Season:   season,
		Platform: model.PlatformYahoo,
		Teams:    make([]model.LeagueTeam, 0, len(league.Standings.Teams.Teams)),
	}

	for _, t := range league.Standings.Teams.Teams {
		team := model.LeagueTeam{
			ID:   t.Key,
			Name: t.Name,
		}
		if t.Managers != nil && len(t.Managers.Managers) > 0 {
			team.OwnerID = t.Managers.Managers[0].ID
		}
		if t.TeamStandings != nil && t.TeamStandings.OutcomeTotals != nil {
			o := t.TeamStandings.OutcomeTotals
			team.Record = model.Record{Wins: o.Wins, Losses: o.Losses, Ties: o.Ties}
		}
		snapshot.Teams = append(snapshot.Teams, team)
	}

	return snapshot, nil
}

func (c *Client) GetTeamLineup(httpClient *http.Client, leagueID, teamKey string, week, season int) (*model.Lineup, error) {
	content, err := c.yahooRequest(httpClient, leagueID, teamKey, "/fantasy/v2/team/%s/roster;week=%d", teamKey, week)
	if err != nil {
		return nil, err
	}

	if content == nil ||
		content.Team == nil ||
		content.Team.Roster == nil ||
		content.Team.Roster.Players == nil ||
		content.Team.Roster.Players.Players == nil {
		return nil, &platformerr.NotFoundError{Platform: model.PlatformYahoo, Kind: "team", ID: teamKey}
	}

	lineup := &model.Lineup{
		ID:       fmt.Sprintf("%s-%s-%d", leagueID, teamKey, week),
		TeamID:   teamKey,
		Week:     week,
		Season:   season,
		Starters: make(map[model.Slot]model.Player),
	}

	assigner := model.NewSlotAssigner()
	for _, p := range content.Team.Roster.Players.Players {
		player := toPlayer(&p)

		selected := ""
		if p.SelectedPosition != nil {
			selected = p.SelectedPosition.Position
		}
		base, starting := slotBase(selected)
		if !starting {
			if base == "BN" {
				lineup.Bench = append(lineup.Bench, player)
			}
			// IR players are neither starters nor bench for display.
			continue
		}

		lineup.Starters[assigner.Next(base)] = player
	}

	lineup.RecomputeTotals()
	lineup.LastUpdated = time.Now().UTC()
	return lineup, nil
}

// UpdateLineup reports false. Lineup writes need Yahoo's full
// roster-change transaction API, which this integration does not
// implement. Degraded by design.
func (c *Client) UpdateLineup(ctx context.Context, leagueID, teamKey string, week int, partial map[model.Slot]model.Player) (bool, error) {
	return false, nil
}

func toPlayer(p *internal.Player) model.Player {
	player := model.Player{
		ID:       p.ID,
		Position: model.ParsePosition(p.DisplayPosition),
		Team:     model.ParseTeam(p.TeamAbbr),
		Status:   model.ParseInjuryStatus(p.Status),
	}
	if p.Name != nil {
		player.Name = p.Name.Full
	}
	if player.Position == model.POS_DEF && p.TeamFullName != "" {
		player.Name = p.TeamFullName
	}
	if player.Position == model.POS_UNKNOWN {
		player.Position = model.POS_FLEX
	}
	if p.PlayerPoints != nil {
		player.ActualPoints = p.PlayerPoints.Total
	}
	if p.ProjectedPoints != nil {
		player.ProjectedPoints = p.ProjectedPoints.Total
	}
	return player
}

func (c *Client) yahooRequest(httpClient *http.Client, leagueID, teamID, path string, args ...any) (*internal.FantasyContent, error) {
	p := fmt.Sprintf(path, args...)
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s%s", c.url, p), nil)
	if err != nil {
		return nil, c.fetchErr(leagueID, teamID, fmt.Errorf("error creating yahoo http request: %w", err))
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.fetchErr(leagueID, teamID, fmt.Errorf("error sending yahoo http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &platformerr.AuthError{
			Platform: model.PlatformYahoo,
			Reason:   fmt.Sprintf("yahoo rejected the token with status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.fetchErr(leagueID, teamID, fmt.Errorf("unexpected status code from yahoo: %d", resp.StatusCode))
	}

	var res internal.FantasyContent
	if err := xml.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, c.fetchErr(leagueID, teamID, fmt.Errorf("error parsing response from yahoo: %w", err))
	}

	return &res, nil
}

func (c *Client) fetchErr(leagueID, teamID string, err error) error {
	var netErr net.Error
	timeout := (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded)
	return &platformerr.FetchError{
		Platform: model.PlatformYahoo,
		LeagueID: leagueID,
		TeamID:   teamID,
		Timeout:  timeout,
		Err:      err,
	}
}
