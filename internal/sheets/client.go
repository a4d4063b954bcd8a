// Package sheets provides the read-only HTTP client for the Google Sheets
// values API. It is a pure I/O adapter: no business logic, no caching, every
// call re-fetches.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cargotrack_backend/platform/apperr"
	"cargotrack_backend/platform/logger"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client is the HTTP client for the Google Sheets API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Google Sheets API client.
func New(apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type spreadsheetResponse struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valuesResponse struct {
	Values [][]interface{} `json:"values"`
}

// SheetTitles lists the tab names of the spreadsheet.
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties.title&key=%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.QueryEscape(c.apiKey))

	var decoded spreadsheetResponse
	if err := c.doRequest(ctx, reqURL, &decoded); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(decoded.Sheets))
	for _, sheet := range decoded.Sheets {
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

// Values fetches the cell values of the given A1 range as ordered rows of
// string cells.
func (c *Client) Values(ctx context.Context, spreadsheetID, rangeA1 string) ([][]string, error) {
	reqURL := fmt.Sprintf("%s/spreadsheets/%s/values/%s?key=%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rangeA1), url.QueryEscape(c.apiKey))

	var decoded valuesResponse
	if err := c.doRequest(ctx, reqURL, &decoded); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(decoded.Values))
	for _, raw := range decoded.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, cellString(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "spreadsheet source unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.Unavailable(fmt.Sprintf("spreadsheet source returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "decode spreadsheet response", err)
	}
	return nil
}

func cellString(cell interface{}) string {
	switch typed := cell.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return ""
	default:
		return fmt.Sprint(typed)
	}
}
