package controller

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/oauth2"

	"github.com/morganjb52/ffb/model"
)

// oauthState tracks one in-flight authorization. States expire so a
// stale callback cannot mint a token.
type oauthState struct {
	expiry time.Time
	token  *oauth2.Token
}

const oauthStateTTL = 5 * time.Minute

func (c *controller) OAuthStart(platform string) (string, error) {
	if platform != model.PlatformYahoo {
		return "", errors.New("yahoo is the only supported oauth platform")
	}
	if c.yahooConfig == nil {
		return "", errors.New("yahoo oauth client is not configured")
	}

	state := generateRandomState()
	url := c.yahooConfig.AuthCodeURL(state)

	c.mu.Lock()
	c.oauthStates[state] = &oauthState{expiry: c.clock.Now().Add(oauthStateTTL)}
	c.mu.Unlock()

	return url, nil
}

func (c *controller) OAuthExchange(ctx context.Context, state, code string) error {
	c.mu.Lock()
	s, ok := c.oauthStates[state]
	c.mu.Unlock()
	if !ok || c.clock.Now().After(s.expiry) {
		return errors.New("state is not valid")
	}

	token, err := c.yahoo.Authenticate(ctx, c.yahooConfig, code)
	if err != nil {
		return err
	}

	c.mu.Lock()
	s.token = token
	creds := c.creds[model.PlatformYahoo]
	if creds == nil {
		creds = make(map[string]string)
		c.creds[model.PlatformYahoo] = creds
	}
	creds["accessToken"] = token.AccessToken
	c.mu.Unlock()

	return nil
}

func generateRandomState() string {
	var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	b := make([]rune, 15)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
