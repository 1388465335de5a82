package espn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// ESPN has no public read API, so page fetches go through third-party
// CORS relays instead of hitting the upstream host directly. The relays
// differ in one important way: variant A forwards request headers (so
// the session cookie reaches ESPN), variant B forwards nothing and so
// can only ever produce an unauthenticated page.
type relay struct {
	name string
	// format has one %s verb that receives the URL-encoded target.
	format         string
	forwardHeaders bool
}

func defaultRelays() []relay {
	return []relay{
		{name: "cors-sh", format: "https://proxy.cors.sh/%s", forwardHeaders: true},
		{name: "allorigins", format: "https://api.allorigins.win/raw?url=%s", forwardHeaders: false},
	}
}

// fetchViaRelays tries each relay in order and returns the first body
// that arrives at the transport level. A relay that returns a login
// page "succeeds" here; the caller decides what the content means.
func (c *Client) fetchViaRelays(ctx context.Context, method, target string, headers http.Header, body string) (string, string, error) {
	var failures []string

	for _, r := range c.relays {
		content, err := c.fetchViaRelay(ctx, r, method, target, headers, body)
		if err != nil {
			log.Printf("espn relay %s failed for %s: %v", r.name, target, err)
			failures = append(failures, fmt.Sprintf("%s: %v", r.name, err))
			continue
		}
		return content, r.name, nil
	}

	return "", "", fmt.Errorf("all relays failed: %s", strings.Join(failures, "; "))
}

func (c *Client) fetchViaRelay(ctx context.Context, r relay, method, target string, headers http.Header, body string) (string, error) {
	relayURL := fmt.Sprintf(r.format, url.QueryEscape(target))

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, relayURL, reqBody)
	if err != nil {
		return "", fmt.Errorf("error creating relay request: %w", err)
	}
	if r.forwardHeaders {
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending relay request: %w", err)
	}
	defer resp.Body.Close()

	// 302 is a success for the login POST, the cookies ride on it.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("unexpected status code from relay: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading relay response: %w", err)
	}
	return string(content), nil
}

// postViaRelay sends the login form. Follows no redirects: the
// Set-Cookie headers we need arrive on the first response.
func (c *Client) postViaRelay(ctx context.Context, r relay, target string, headers http.Header, form url.Values) (*http.Response, error) {
	relayURL := fmt.Sprintf(r.format, url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, relayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if r.forwardHeaders {
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := c.noRedirectClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending relay request: %w", err)
	}
	return resp, nil
}

// loginMarkers are the substrings whose presence means the relay handed
// back a login page instead of data. Variant B always produces one of
// these for authenticated pages.
var loginMarkers = []string{"login", "signin", "sign-in"}

func isLoginPage(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range loginMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

var errLoginPage = errors.New("received a login page instead of data")
