package espn

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
)

// rosterRow is one player as recovered from the page, before canonical
// mapping. SlotID is the ESPN lineup-slot number when the structured
// strategy found one, or -1 when only a position is known.
type rosterRow struct {
	Name      string
	Position  string
	Team      string
	Status    string
	SlotID    int
	Bench     bool
	Projected float64
	Actual    float64
}

type teamMeta struct {
	Name   string
	Record model.Record
	Found  bool
}

// Strategy names, also used by tests to check which one produced the
// result.
const (
	StrategyStructured  = "structured"
	StrategyTable       = "table"
	StrategyNameProbe   = "nameprobe"
	StrategyPlaceholder = "placeholder"
)

// parseRoster runs the extraction strategies in priority order and
// returns the first non-empty result plus the name of the strategy that
// produced it. Structured JSON wins over table rows even when both
// would match; the order is fixed, not first-match-wins. An empty
// result with strategy "" means the caller should fall back to
// placeholder data.
func (c *Client) parseRoster(html string) ([]rosterRow, string) {
	if rows, err := extractStructured(html); err != nil {
		log.Printf("espn structured extraction failed: %v", err)
	} else if len(rows) > 0 {
		return rows, StrategyStructured
	}

	if rows, err := extractTableRows(html); err != nil {
		log.Printf("espn table extraction failed: %v", err)
	} else if len(rows) > 0 {
		return rows, StrategyTable
	}

	// Weakest strategy, last on purpose: it only recognizes names the
	// matcher knows about and recovers fields from nearby markup
	// heuristically.
	if rows := extractNameProbe(html, c.matcher); len(rows) > 0 {
		return rows, StrategyNameProbe
	}

	return nil, ""
}

// stateMarkers are the variable-assignment prefixes ESPN pages use for
// embedded JSON state blobs.
var stateMarkers = []*regexp.Regexp{
	regexp.MustCompile(`window\['__espnfitt__'\]\s*=`),
	regexp.MustCompile(`window\.__INITIAL_STATE__\s*=`),
	regexp.MustCompile(`window\.espn\.fantasy\s*=`),
}

// extractStructured finds an embedded JSON state blob and maps its
// roster entries. Most accurate when present, so it runs first.
func extractStructured(html string) ([]rosterRow, error) {
	blob := findStateBlob(html)
	if blob == "" {
		return nil, nil
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, &platformerr.ParseError{
			Strategy: StrategyStructured,
			Err:      fmt.Errorf("error decoding state blob: %w", err),
		}
	}

	entries := extractArray(extractMap(state, "roster"), "entries")
	if len(entries) == 0 {
		return nil, nil
	}

	rows := make([]rosterRow, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		player := extractMap(entry, "player")
		name := extractString(player, "fullName")
		if name == "" {
			continue
		}

		slotID := int(extractFloat(entry, "lineupSlotId"))
		rows = append(rows, rosterRow{
			Name:      model.TrimNameSuffix(name),
			Position:  extractString(player, "position"),
			Team:      extractString(player, "proTeam"),
			Status:    extractString(player, "injuryStatus"),
			SlotID:    slotID,
			Bench:     slotID == espnSlotBench || slotID == espnSlotIR,
			Projected: extractFloat(entry, "projectedPoints"),
			Actual:    extractFloat(entry, "actualPoints"),
		})
	}
	return rows, nil
}

// findStateBlob locates a marker and returns the balanced JSON object
// that follows the assignment. Brace counting skips string literals so
// braces inside player names cannot truncate the blob.
func findStateBlob(html string) string {
	for _, marker := range stateMarkers {
		loc := marker.FindStringIndex(html)
		if loc == nil {
			continue
		}

		start := strings.Index(html[loc[1]:], "{")
		if start < 0 {
			continue
		}
		start += loc[1]

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(html); i++ {
			ch := html[i]
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = inString
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						return html[start : i+1]
					}
				}
			}
		}
	}
	return ""
}

var (
	positionTokenRe = regexp.MustCompile(`\b(QB|RB|WR|TE|K|D/ST|DST|DEF)\b`)
	teamTokenRe     = regexp.MustCompile(`\b([A-Z]{2,3})\b`)
	pointsRe        = regexp.MustCompile(`\b(\d+\.\d+)\b`)
	recordRe        = regexp.MustCompile(`\b(\d+)-(\d+)(?:-(\d+))?\b`)
)

// extractTableRows scans roster table rows. Header, TOTAL and IR marker
// rows are skipped; a Bench marker row flips all following rows to
// bench.
func extractTableRows(html string) ([]rosterRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &platformerr.ParseError{
			Strategy: StrategyTable,
			Err:      fmt.Errorf("error parsing html: %w", err),
		}
	}

	var rows []rosterRow
	bench := false
	doc.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return
		}

		// Cell texts joined with spaces; tr.Text() would run adjacent
		// cells together and hide the token boundaries.
		var cells []string
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		text := strings.TrimSpace(strings.Join(cells, " "))

		upper := strings.ToUpper(text)
		switch {
		case strings.Contains(upper, "STARTERS"), strings.Contains(upper, "TOTAL"):
			return
		case strings.HasPrefix(upper, "BENCH"):
			bench = true
			return
		case upper == "IR" || strings.HasPrefix(upper, "INJURED RESERVE"):
			return
		}

		name := strings.TrimSpace(tr.Find("a").First().Text())
		if name == "" {
			return
		}

		// The position and team live in short uppercase tokens outside
		// the anchor text; points are the first two decimal numbers.
		rest := strings.Replace(text, name, "", 1)
		row := rosterRow{
			Name:   model.TrimNameSuffix(name),
			SlotID: -1,
			Bench:  bench,
		}
		row.Position = firstPositionToken(rest)
		row.Team = firstTeamToken(rest, row.Position)

		points := pointsRe.FindAllString(rest, 2)
		if len(points) > 0 {
			row.Projected, _ = strconv.ParseFloat(points[0], 64)
		}
		if len(points) > 1 {
			row.Actual, _ = strconv.ParseFloat(points[1], 64)
		}

		rows = append(rows, row)
	})

	return rows, nil
}

// NameMatcher supplies the candidate names the name-probe strategy
// searches for. The default only knows a small sample roster, so real
// leagues should plug in their own list.
type NameMatcher interface {
	Candidates() []string
}

type StaticNameMatcher struct {
	Names []string
}

func (m *StaticNameMatcher) Candidates() []string {
	return m.Names
}

// DefaultNameMatcher recognizes a handful of well-known players. It is
// a last-resort heuristic: leagues rostering none of these names probe
// out empty and fall through to placeholder data.
func DefaultNameMatcher() NameMatcher {
	return &StaticNameMatcher{Names: []string{
		"Patrick Mahomes",
		"Josh Allen",
		"Christian McCaffrey",
		"Bijan Robinson",
		"Justin Jefferson",
		"CeeDee Lamb",
		"Tyreek Hill",
		"Travis Kelce",
		"Sam LaPorta",
		"Harrison Butker",
	}}
}

const probeWindow = 300

// extractNameProbe searches the raw HTML for known player names and
// pulls a bounded window of surrounding markup to recover position,
// team and points.
func extractNameProbe(html string, matcher NameMatcher) []rosterRow {
	if matcher == nil {
		return nil
	}

	var rows []rosterRow
	for _, name := range matcher.Candidates() {
		idx := strings.Index(html, name)
		if idx < 0 {
			continue
		}

		start := idx - probeWindow/3
		if start < 0 {
			start = 0
		}
		end := idx + len(name) + probeWindow
		if end > len(html) {
			end = len(html)
		}
		window := html[start:end]

		row := rosterRow{
			Name:   name,
			SlotID: -1,
		}
		row.Position = firstPositionToken(window)
		row.Team = firstTeamToken(window, row.Position)
		points := pointsRe.FindAllString(window, 2)
		if len(points) > 0 {
			row.Projected, _ = strconv.ParseFloat(points[0], 64)
		}
		if len(points) > 1 {
			row.Actual, _ = strconv.ParseFloat(points[1], 64)
		}
		rows = append(rows, row)
	}
	return rows
}

// extractTeamMeta recovers the team name and record, trying the
// structured blob first, then header markup, then defaults.
func extractTeamMeta(html string) teamMeta {
	if blob := findStateBlob(html); blob != "" {
		var state map[string]any
		if err := json.Unmarshal([]byte(blob), &state); err == nil {
			team := extractMap(state, "team")
			if name := extractString(team, "name"); name != "" {
				record := extractMap(team, "record")
				return teamMeta{
					Name: name,
					Record: model.Record{
						Wins:   int(extractFloat(record, "wins")),
						Losses: int(extractFloat(record, "losses")),
						Ties:   int(extractFloat(record, "ties")),
					},
					Found: true,
				}
			}
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		for _, sel := range []string{"h1.team-name", "h3.team-name", "h1"} {
			name := strings.TrimSpace(doc.Find(sel).First().Text())
			if name == "" {
				continue
			}
			meta := teamMeta{Name: name, Found: true}
			if m := recordRe.FindStringSubmatch(doc.Text()); m != nil {
				meta.Record.Wins, _ = strconv.Atoi(m[1])
				meta.Record.Losses, _ = strconv.Atoi(m[2])
				if m[3] != "" {
					meta.Record.Ties, _ = strconv.Atoi(m[3])
				}
			}
			return meta
		}
	}

	// Fixed fallbacks, see placeholder policy.
	return teamMeta{Name: "ESPN Team", Record: model.Record{}}
}

func firstPositionToken(s string) string {
	if m := positionTokenRe.FindString(s); m != "" {
		return m
	}
	return ""
}

// firstTeamToken returns the first short uppercase token that resolves
// to a real NFL team and is not the position token.
func firstTeamToken(s, position string) string {
	for _, m := range teamTokenRe.FindAllString(s, -1) {
		if m == position || positionTokenRe.MatchString(m) {
			continue
		}
		if model.ParseTeam(m) != model.TEAM_FA {
			return m
		}
	}
	return ""
}

// JSON walking helpers for the untyped state blob.

func extractMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func extractArray(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func extractString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func extractFloat(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}
