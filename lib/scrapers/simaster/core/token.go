package core

import (
	"regexp"

	"github.com/go-resty/resty/v2"
)

// TokenField is the name simaster uses for its anti-forgery token, both
// as a hidden form field and as a cookie.
const TokenField = "simasterUGM_token"

var tokenFieldRegex = regexp.MustCompile(`name="` + TokenField + `" value="(.+?)"`)

// TokenSource names one place the portal may have put the token.
// Different endpoints stash it in different places, and a token pulled
// from the wrong source is silently rejected by the server, so callers
// must say which sources their endpoint accepts.
type TokenSource int

const (
	// the well-known hidden input inside the response body
	TokenFromBody TokenSource = iota
	// a Set-Cookie on this specific response
	TokenFromResponseCookies
	// the cookie accumulated in the session's jar
	TokenFromSessionCookies
)

func (s TokenSource) String() string {
	switch s {
	case TokenFromBody:
		return "body"
	case TokenFromResponseCookies:
		return "response cookies"
	case TokenFromSessionCookies:
		return "session cookies"
	}
	return "unknown"
}

// ResolveToken extracts an anti-forgery token from the given response,
// trying the acceptable sources in order, first hit wins. The resolved
// token also becomes the session's current token. A miss across all
// sources is a *TokenNotFoundError, never a transport failure.
func (c *Client) ResolveToken(res *resty.Response, sources ...TokenSource) (string, error) {
	for _, source := range sources {
		token := c.tokenFrom(res, source)
		if token != "" {
			c.SetToken(token)
			return token, nil
		}
	}
	return "", &TokenNotFoundError{Sources: sources}
}

func (c *Client) tokenFrom(res *resty.Response, source TokenSource) string {
	switch source {
	case TokenFromBody:
		groups := tokenFieldRegex.FindSubmatch(res.Body())
		if len(groups) == 2 {
			return string(groups[1])
		}
	case TokenFromResponseCookies:
		for _, cookie := range res.Cookies() {
			if cookie.Name == TokenField {
				return cookie.Value
			}
		}
	case TokenFromSessionCookies:
		jar := c.Http.GetClient().Jar
		if jar == nil {
			return ""
		}
		for _, cookie := range jar.Cookies(c.BaseUrl) {
			if cookie.Name == TokenField {
				return cookie.Value
			}
		}
	}
	return ""
}
