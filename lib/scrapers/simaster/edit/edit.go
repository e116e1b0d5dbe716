// Package edit performs the mutating simaster operations: creating
// logbook entries and kegiatan, and posting attendance. The portal
// answers these with an ambiguous mix of json and html, so every
// submission funnels through one ordered outcome rule chain.
package edit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/textutil"
)

// Outcome is the tagged result of a submission. A failed Outcome with a
// nil error means the portal itself refused; its literal message is
// carried so the caller can surface it untouched.
type Outcome struct {
	OK      bool
	Message string
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

// submitForm implements the generic protocol: GET the add page, take
// its single form's hidden fields as authoritative defaults, override
// them with the caller's fields, then POST to the form's declared
// action url.
func (c Client) submitForm(ctx context.Context, addUrl string, fields map[string]string) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "submitForm")
	defer span.End()

	page, err := c.Core.Http.R().
		SetContext(ctx).
		Get(addUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch add page")
		return Outcome{}, &core.TransportError{URL: addUrl, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse add page html")
		return Outcome{}, err
	}
	form := doc.Find("form").First()
	if form.Length() == 0 {
		span.SetStatus(codes.Error, "no form element on add page")
		return Outcome{}, fmt.Errorf("no form element on %s", addUrl)
	}

	payload := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name != "" {
			payload[name] = input.AttrOr("value", "")
		}
	})
	// keep the session token fresh; some add pages only carry it in
	// their hidden fields
	if token, err := c.Core.ResolveToken(
		page,
		core.TokenFromBody,
		core.TokenFromResponseCookies,
		core.TokenFromSessionCookies,
	); err == nil {
		if _, present := payload[core.TokenField]; !present {
			payload[core.TokenField] = token
		}
	}
	for k, v := range fields {
		payload[k] = v
	}

	actionUrl := addUrl
	if action := form.AttrOr("action", ""); action != "" {
		actionUrl, err = c.Core.ResolveUrl(action)
		if err != nil {
			return Outcome{}, err
		}
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(actionUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post form")
		return Outcome{}, &core.TransportError{URL: actionUrl, Err: err}
	}
	c.Core.RotateTokenFromJSON(res.Body())

	outcome := interpretOutcome(res.StatusCode(), res.Body())
	if !outcome.OK {
		span.SetStatus(codes.Error, outcome.Message)
	}
	return outcome, nil
}

type submitResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// interpretOutcome decides success or failure for an ambiguous portal
// response, in order:
//  1. json with status "success" is a success
//  2. json with any other status is a failure carrying its message
//  3. non-json with an error banner is a failure carrying the banner
//     text, even on HTTP 2xx
//  4. non-json HTTP 2xx without a banner is a weak success (the portal
//     sometimes omits json on success)
func interpretOutcome(statusCode int, body []byte) Outcome {
	var payload submitResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Status != "" {
		if payload.Status == "success" {
			return Outcome{OK: true, Message: payload.Msg}
		}
		msg := payload.Msg
		if msg == "" {
			msg = fmt.Sprintf("portal returned status %q", payload.Status)
		}
		return Outcome{OK: false, Message: msg}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		banner := doc.Find("div.note.note-danger").First()
		if banner.Length() > 0 {
			return Outcome{OK: false, Message: textutil.CollapseWhitespace(banner.Text())}
		}
	}

	if statusCode >= 200 && statusCode < 300 {
		return Outcome{OK: true, Message: "request accepted (no json confirmation)"}
	}
	return Outcome{OK: false, Message: fmt.Sprintf("portal returned http status %d", statusCode)}
}
