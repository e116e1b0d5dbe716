// Package core owns the authenticated simaster HTTP session: login,
// session validation and the anti-forgery token plumbing every other
// simaster package builds on.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/restyutil"
	"malaskkn/lib/telemetry"
)

const (
	BaseUrl   = "https://simaster.ugm.ac.id"
	homePath  = "/beranda"
	loginPath = "/services/simaster/service_login"
)

var ErrLoginFailed = fmt.Errorf("simaster rejected the login credentials")

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// the rotating simasterUGM_token; guarded because the server may
	// hand out a fresh value on any response and the next request must
	// not race a stale read against that write
	tokenMu sync.Mutex
	token   string
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = BaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/simaster/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}
	return c, nil
}

// SetInstrumentOutput enables full request/response transcript dumps
// for this session's http client.
func (c *Client) SetInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, out)
}

type loginResponse struct {
	IsLogin     int    `json:"isLogin"`
	NamaLengkap string `json:"namaLengkap"`
}

// Login authenticates the session against the simaster login service.
// A bad username/password surfaces as ErrLoginFailed, anything
// network-shaped as a *TransportError. Never retries.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"aId":      "",
			"username": username,
			"password": password,
		}).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return &TransportError{URL: loginPath, Err: err}
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, "login endpoint returned a non-200 status")
		return &TransportError{URL: loginPath, Err: fmt.Errorf("status %d", res.StatusCode())}
	}

	var body loginResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login endpoint did not return json")
		return fmt.Errorf("%w: unexpected login response: %s", ErrLoginFailed, snippet(res.String()))
	}
	if body.IsLogin != 1 {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return ErrLoginFailed
	}

	span.AddEvent("logged in as " + body.NamaLengkap)
	return nil
}

// Validate issues a lightweight request to the home page and reports
// whether the session is still authenticated: the page must come back
// 200 and carry the anti-forgery token marker only logged-in pages have.
func (c *Client) Validate(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "client:Validate")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(homePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch home page")
		return false
	}
	return res.StatusCode() == 200 && strings.Contains(res.String(), TokenField)
}

func (c *Client) Token() string {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	if token == "" {
		return
	}
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.token = token
}

// RotateTokenFromJSON stores the fresh csrf_value some endpoints return
// inside their json payloads, so the next caller doesn't reuse a stale
// token. Bodies that aren't json or don't carry the field are ignored.
func (c *Client) RotateTokenFromJSON(body []byte) {
	var payload struct {
		CsrfValue string `json:"csrf_value"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return
	}
	c.SetToken(payload.CsrfValue)
}

// ResolveUrl turns a possibly-relative scraped href into an absolute
// url on the portal's origin.
func (c *Client) ResolveUrl(href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return c.BaseUrl.ResolveReference(u).String(), nil
}
