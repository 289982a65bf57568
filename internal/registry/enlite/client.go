// Package enlite implements the registry lookup port against the Enlite
// company-data SOAP endpoint.
package enlite

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/consciencex/lhb-ubo/internal/platform/config"
	"github.com/consciencex/lhb-ubo/internal/registry"
)

const companyDataPath = "/enlitews/companyData"

// soapEnvelope is the getDataEnlite request payload.
const soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:eh="http://eh.actimize.com" xmlns:view="http://view.bol.com/">
    <soapenv:Header/>
    <soapenv:Body>
        <view:getDataEnlite>
            <registrationId>%s</registrationId>
            <language>%s</language>
        </view:getDataEnlite>
    </soapenv:Body>
</soapenv:Envelope>`

// Client is a thin adapter over the Enlite SOAP API. It performs no caching
// or retries; wrap it with the cache package for either.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs an Enlite client from configuration.
func NewClient(cfg config.Registry, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.language == "" {
		c.language = "EN"
	}
	return c
}

// Lookup fetches one company record.
//
// A missing API key is a configuration fault that no retry can fix, so it is
// reported as fatal rather than as a per-company failure.
func (c *Client) Lookup(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
	if c.apiKey == "" {
		return nil, registry.NewLookupError(registry.ErrorAuthentication, registrationID,
			"api key not configured", registry.ErrFatalConfig)
	}

	body := fmt.Sprintf(soapEnvelope, registrationID, c.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+companyDataPath, strings.NewReader(body))
	if err != nil {
		return nil, registry.NewLookupError(registry.ErrorInternal, registrationID, "build request", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		category := registry.ErrorProviderOutage
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			category = registry.ErrorTimeout
		}
		return nil, registry.NewLookupError(category, registrationID, "registry request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, registry.NewLookupError(registry.ErrorAuthentication, registrationID,
			fmt.Sprintf("registry rejected credentials (status %d)", resp.StatusCode), registry.ErrFatalConfig)
	case resp.StatusCode == http.StatusNotFound:
		return nil, registry.NewLookupError(registry.ErrorNotFound, registrationID, "company not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, registry.NewLookupError(registry.ErrorRateLimited, registrationID, "registry rate limit", nil)
	default:
		return nil, registry.NewLookupError(registry.ErrorProviderOutage, registrationID,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, registry.NewLookupError(registry.ErrorBadData, registrationID, "read response", err)
	}

	record, err := c.parseResponse(ctx, registrationID, payload)
	if err != nil {
		return nil, err
	}
	return record, nil
}

type envelope struct {
	Return returnData `xml:"Body>getDataEnliteResponse>return"`
}

type returnData struct {
	Profile  *profileSummary `xml:"profileSummary"`
	Director struct {
		List []directorXML `xml:"list"`
	} `xml:"director"`
	HeldBy struct {
		Levels []levelHeldBy `xml:"levelHeldBy"`
	} `xml:"heldBy"`
}

type profileSummary struct {
	NameThFull     string `xml:"nameThFull"`
	NameTh         string `xml:"nameTh"`
	BusinessTypeTh string `xml:"businessTypeTh"`
	NameEnFull     string `xml:"nameEnFull"`
	NameEn         string `xml:"nameEn"`
	BusinessTypeEn string `xml:"businessTypeEn"`
	RegisID        string `xml:"regisId"`
	CompanyStatus  string `xml:"companyStatus"`
	Capital        string `xml:"capital"`
	RegisDate      string `xml:"regisDate"`
}

type directorXML struct {
	Title     string `xml:"title"`
	Firstname string `xml:"firstname"`
	Lastname  string `xml:"lastname"`
}

type levelHeldBy struct {
	Level string     `xml:"level,attr"`
	Rows  []shareRow `xml:"data"`
}

type shareRow struct {
	RegisIDHeldBy   string    `xml:"regisIdHeldBy"`
	BusinessStatus  string    `xml:"businessStatus"`
	NumOfSH         string    `xml:"numOfSH"`
	ShareAmount     string    `xml:"shareAmount"`
	Percent         string    `xml:"percent"`
	Nationality     string    `xml:"nationality"`
	DirectorShip    string    `xml:"directorShip"`
	DirectorUpdDate string    `xml:"directorUpdDate"`
	Holder          holderXML `xml:"shareholder"`
}

type holderXML struct {
	Type            string `xml:"type,attr"`
	Title           string `xml:"title"`
	Firstname       string `xml:"firstname"`
	Lastname        string `xml:"lastname"`
	BusinessType    string `xml:"businessType"`
	CompanyName     string `xml:"companyName"`
	CompanyNameFull string `xml:"companyNameFull"`
}

func (c *Client) parseResponse(ctx context.Context, registrationID string, payload []byte) (*registry.CompanyRecord, error) {
	var env envelope
	if err := xml.Unmarshal(payload, &env); err != nil {
		return nil, registry.NewLookupError(registry.ErrorBadData, registrationID, "parse response", err)
	}

	ret := env.Return
	if ret.Profile == nil && len(ret.HeldBy.Levels) == 0 {
		return nil, registry.NewLookupError(registry.ErrorNotFound, registrationID, "no company data returned", nil)
	}

	record := &registry.CompanyRecord{RegistrationID: registrationID}
	if p := ret.Profile; p != nil {
		record.NameEN = firstNonEmpty(p.NameEnFull, p.NameEn)
		record.NameTH = firstNonEmpty(p.NameThFull, p.NameTh)
		record.BusinessType = firstNonEmpty(p.BusinessTypeEn, p.BusinessTypeTh)
		record.Status = p.CompanyStatus
		record.Capital = p.Capital
		record.RegisteredDate = p.RegisDate
		if p.RegisID != "" {
			record.RegistrationID = p.RegisID
		}
	}

	for _, d := range ret.Director.List {
		record.Directors = append(record.Directors, registry.Director{
			Title:     strings.TrimSpace(d.Title),
			FirstName: strings.TrimSpace(d.Firstname),
			LastName:  strings.TrimSpace(d.Lastname),
		})
	}

	// Only the first tier is trusted from a single response; deeper tiers are
	// resolved by looking each corporate holder up in its own right.
	for _, level := range ret.HeldBy.Levels {
		if level.Level != "1" {
			continue
		}
		for _, row := range level.Rows {
			holder, err := parseShareRow(row)
			if err != nil {
				c.logger.WarnContext(ctx, "skipping malformed shareholder row",
					"registration_id", registrationID,
					"error", err,
				)
				continue
			}
			record.Shareholders = append(record.Shareholders, holder)
		}
	}

	return record, nil
}

func parseShareRow(row shareRow) (registry.Shareholder, error) {
	percent, err := parseFloat(row.Percent)
	if err != nil {
		return registry.Shareholder{}, fmt.Errorf("percent %q: %w", row.Percent, err)
	}
	amount, err := parseAmount(row.ShareAmount)
	if err != nil {
		return registry.Shareholder{}, fmt.Errorf("share amount %q: %w", row.ShareAmount, err)
	}

	kind := registry.HolderPerson
	if row.Holder.Type == "company" {
		kind = registry.HolderCorporate
	}

	first := strings.TrimSpace(row.Holder.Firstname)
	last := strings.TrimSpace(row.Holder.Lastname)
	name := strings.TrimSpace(first + " " + last)
	if kind == registry.HolderCorporate {
		name = firstNonEmpty(
			strings.TrimSpace(row.Holder.CompanyNameFull),
			strings.TrimSpace(row.Holder.CompanyName),
			name,
		)
		if name == "" {
			if row.RegisIDHeldBy != "" {
				name = "Company " + row.RegisIDHeldBy
			} else {
				name = "Corporate Shareholder"
			}
		}
	}

	return registry.Shareholder{
		Kind:           kind,
		DisplayName:    name,
		FirstName:      first,
		LastName:       last,
		Nationality:    strings.TrimSpace(row.Nationality),
		ShareAmount:    amount,
		Percent:        percent,
		CorporateID:    strings.TrimSpace(row.RegisIDHeldBy),
		BusinessStatus: strings.TrimSpace(row.BusinessStatus),
		Directorship:   strings.ToUpper(strings.TrimSpace(row.DirectorShip)),
	}, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseAmount handles the registry's thousands-separated share counts.
func parseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
