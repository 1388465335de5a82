package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// SleeperLeagueID is the league the fake server knows about. Requests for
// any other league get the same "null" body the real API returns.
const SleeperLeagueID = "123456789"

//go:embed sleeperdata
var sleeperdata embed.FS

type FakeSleeperServer struct {
	s *httptest.Server
}

func NewFakeSleeperServer() *FakeSleeperServer {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/players/nfl", nflPlayersHandler)

		r.Route("/league/{leagueID}", func(r chi.Router) {
			r.Get("/", sleeperLeagueHandler)
			r.Get("/users", sleeperUsersHandler)
			r.Get("/rosters", sleeperRostersHandler)
			r.Get("/matchups/{week}", sleeperMatchupsHandler)
		})
	})
	r.Get("/projections/nfl/regular/{season}/{week}", sleeperProjectionsHandler)

	return &FakeSleeperServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeSleeperServer) Close() {
	f.s.Close()
}

func (f *FakeSleeperServer) URL() string {
	return f.s.URL
}

func nflPlayersHandler(w http.ResponseWriter, r *http.Request) {
	serveSleeperFile(w, "players.json")
}

func sleeperLeagueHandler(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == SleeperLeagueID {
		serveSleeperFile(w, "league.json")
	} else {
		// requesting a league that doesn't exist returns a 200 with "null" as the response body
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("null"))
	}
}

func sleeperUsersHandler(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == SleeperLeagueID {
		serveSleeperFile(w, "users.json")
	} else {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[]"))
	}
}

func sleeperRostersHandler(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == SleeperLeagueID {
		serveSleeperFile(w, "rosters.json")
	} else {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[]"))
	}
}

func sleeperMatchupsHandler(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	week := chi.URLParam(r, "week")
	if leagueID == SleeperLeagueID && week == "4" {
		serveSleeperFile(w, "matchups_4.json")
	} else {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[]"))
	}
}

func sleeperProjectionsHandler(w http.ResponseWriter, r *http.Request) {
	season := chi.URLParam(r, "season")
	week := chi.URLParam(r, "week")
	if season == "2025" && week == "4" {
		serveSleeperFile(w, "projections_4.json")
	} else {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}
}

func serveSleeperFile(w http.ResponseWriter, name string) {
	b, err := sleeperdata.ReadFile(fmt.Sprintf("sleeperdata/%s", name))
	if err != nil {
		log.Printf("error reading sleeperdata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
