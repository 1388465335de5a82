package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Credentials the fake ESPN login accepts. The anti-forgery token must
// match the hidden input in espndata/login.html.
const EspnUsername = "morgan@example.com"
const EspnPassword = "hunter2"
const espnLoginToken = "tok-8f3a1c9e77d24b5d"

// EspnSessionCookie is the cookie string a successful login produces,
// in the order the Set-Cookie headers are written.
const EspnSessionCookie = "espn_s2=s2-0f66a2; SWID=E5D9-4A11-9C0D"

//go:embed espndata
var espndata embed.FS

// FakeESPNServer stands in for both CORS relays and the ESPN pages
// behind them. The "/relay-a" endpoint forwards like a real
// header-forwarding relay would, so requests carrying the session
// cookie get team pages. "/relay-b" drops headers and therefore always
// produces a login page for authenticated targets.
type FakeESPNServer struct {
	s *httptest.Server

	// Mode selects which team page fixture gets served: "structured",
	// "table", "probe" or "empty".
	Mode string

	// TeamRequests counts team page fetches that reached the server.
	TeamRequests int

	// LastCookie is the Cookie header seen on the most recent
	// relay-a request for a fantasy page.
	LastCookie string

	// LastLineupForm is the body of the most recent lineup POST.
	LastLineupForm string
}

func NewFakeESPNServer() *FakeESPNServer {
	f := &FakeESPNServer{Mode: "structured"}

	r := chi.NewRouter()
	r.Get("/relay-a", f.forwardingRelayHandler)
	r.Post("/relay-a", f.forwardingRelayHandler)
	r.Get("/relay-b", f.plainRelayHandler)
	r.Post("/relay-b", f.plainRelayHandler)

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeESPNServer) Close() {
	f.s.Close()
}

func (f *FakeESPNServer) URL() string {
	return f.s.URL
}

// HeaderRelayFormat is the relay format string for the header-forwarding
// variant, with the %s verb for the encoded target.
func (f *FakeESPNServer) HeaderRelayFormat() string {
	return f.s.URL + "/relay-a?url=%s"
}

func (f *FakeESPNServer) PlainRelayFormat() string {
	return f.s.URL + "/relay-b?url=%s"
}

func (f *FakeESPNServer) forwardingRelayHandler(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")

	switch {
	case strings.Contains(target, "espn.com/login"):
		if r.Method == http.MethodPost {
			f.loginPostHandler(w, r)
			return
		}
		serveEspnFile(w, "login.html")

	case strings.Contains(target, "/api/lineup"):
		f.lineupPostHandler(w, r)

	// Must come before the general fantasy.espn.com case.
	case strings.Contains(target, "/league/standings"):
		if !strings.Contains(r.Header.Get("Cookie"), "espn_s2=") {
			serveEspnFile(w, "login.html")
			return
		}
		serveEspnFile(w, "league_standings.html")

	case strings.Contains(target, "fantasy.espn.com"):
		f.LastCookie = r.Header.Get("Cookie")
		f.TeamRequests++
		if !strings.Contains(f.LastCookie, "espn_s2=") {
			serveEspnFile(w, "login.html")
			return
		}
		serveEspnFile(w, fmt.Sprintf("team_%s.html", f.Mode))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// plainRelayHandler never sees the caller's headers, so every
// authenticated target degrades to the login page.
func (f *FakeESPNServer) plainRelayHandler(w http.ResponseWriter, r *http.Request) {
	serveEspnFile(w, "login.html")
}

func (f *FakeESPNServer) loginPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	token := r.PostFormValue("__RequestVerificationToken")

	if username != EspnUsername || password != EspnPassword || token != espnLoginToken {
		// a bad login re-renders the form with no session cookies
		serveEspnFile(w, "login.html")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "espn_s2", Value: "s2-0f66a2"})
	http.SetCookie(w, &http.Cookie{Name: "SWID", Value: "E5D9-4A11-9C0D"})
	w.Header().Set("Location", "https://www.espn.com/")
	w.WriteHeader(http.StatusFound)
}

func (f *FakeESPNServer) lineupPostHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Cookie"), "espn_s2=") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.LastLineupForm = r.PostForm.Encode()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func serveEspnFile(w http.ResponseWriter, name string) {
	b, err := espndata.ReadFile(fmt.Sprintf("espndata/%s", name))
	if err != nil {
		log.Printf("error reading espndata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
