package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

// YahooLeagueID and YahooTeamKey identify the fixture league/team. Every
// request needs "Bearer <YahooAccessToken>" or it gets a 401 like the real
// API sends for expired tokens.
const YahooLeagueID = "431"
const YahooTeamKey = "449.l.431.t.1"
const YahooAccessToken = "valid-token"

// YahooAuthCode is the only authorization code the fake token endpoint
// exchanges; it mints YahooAccessToken.
const YahooAuthCode = "code-7f0a2b"

const fullYahooLeagueID = "nfl.l.431"

//go:embed yahoodata
var yahoodata embed.FS

type FakeYahooServer struct {
	s *httptest.Server
}

func NewFakeYahooServer() *FakeYahooServer {
	r := chi.NewRouter()

	// The token endpoint takes client credentials, not a bearer token.
	r.Post("/oauth2/get_token", yahooTokenHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireYahooToken)
		// https://fantasysports.yahooapis.com/fantasy/v2/league/nfl.l.431/standings
		r.Route("/fantasy/v2", func(r chi.Router) {
			r.Get("/league/{leagueID}/standings", yahooStandingsHandler)
			r.Get("/team/{teamKey}/roster;week={week}", yahooRosterHandler)
		})
	})

	return &FakeYahooServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeYahooServer) Close() {
	f.s.Close()
}

func (f *FakeYahooServer) URL() string {
	return f.s.URL
}

// OAuthConfig builds an oauth2 config whose endpoints point at the fake
// server, for tests exercising the authorization flow end to end.
func (f *FakeYahooServer) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "fake-client-id",
		ClientSecret: "fake-client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  f.s.URL + "/oauth2/request_auth",
			TokenURL: f.s.URL + "/oauth2/get_token",
		},
		RedirectURL: "http://localhost/oauth/callback",
	}
}

func yahooTokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if r.PostFormValue("code") != YahooAuthCode {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	w.Header().Add("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","expires_in":3600}`, YahooAccessToken)
}

func requireYahooToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != fmt.Sprintf("Bearer %s", YahooAccessToken) {
			w.Header().Add("Content-Type", "text/xml")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(tokenExpiredMessage))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func yahooStandingsHandler(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == fullYahooLeagueID {
		serveYahooFile(w, "standings.xml")
		return
	}

	w.Header().Add("Content-Type", "text/xml")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(forbiddenMessage))
}

func yahooRosterHandler(w http.ResponseWriter, r *http.Request) {
	teamKey := chi.URLParam(r, "teamKey")
	week := chi.URLParam(r, "week")
	if teamKey == YahooTeamKey && week == "4" {
		serveYahooFile(w, "roster_4.xml")
		return
	}

	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("error"))
}

func serveYahooFile(w http.ResponseWriter, name string) {
	b, err := yahoodata.ReadFile(fmt.Sprintf("yahoodata/%s", name))
	if err != nil {
		log.Printf("error reading yahoodata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

const forbiddenMessage = `<?xml version="1.0" encoding="UTF-8"?>
<error xml:lang="en-us" yahoo:uri="http://fantasysports.yahooapis.com/fantasy/v2/league/nfl.l.149975"
xmlns:yahoo="http://www.yahooapis.com/v1/base.rng" xmlns="http://www.yahooapis.com/v1/base.rng">
    <description>You are not allowed to view this page because you are not in this league.</description>
    <detail/>
</error>`

const tokenExpiredMessage = `<?xml version="1.0" encoding="UTF-8"?>
<error xml:lang="en-us" yahoo:uri="http://fantasysports.yahooapis.com/fantasy/v2"
xmlns:yahoo="http://www.yahooapis.com/v1/base.rng" xmlns="http://www.yahooapis.com/v1/base.rng">
    <description>Please provide valid credentials. OAuth oauth_problem="token_expired"</description>
    <detail/>
</error>`
