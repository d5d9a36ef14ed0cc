// Package seoulapi pulls apartment complex metadata from the Seoul open-data
// plaza (data.seoul.go.kr) OpenAptInfo service.
package seoulapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/ingest"
	"github.com/kailas-cloud/aptdex/internal/metrics"
)

// Defaults for the OpenAptInfo service. The API serves at most 1000 rows per call.
const (
	DefaultBaseURL    = "http://openapi.seoul.go.kr:8088"
	DefaultService    = "OpenAptInfo"
	MaxPageSize       = 1000
	DefaultMaxRecords = 10000
)

// Result codes returned in the RESULT envelope.
const (
	codeOK     = "INFO-000"
	codeNoData = "INFO-200"
)

// ErrUpstream wraps every failure talking to the open-data service.
var ErrUpstream = errors.New("open-data api error")

// Config holds the client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Service    string
	PageSize   int
	MaxRecords int
	Timeout    time.Duration
	Retry      RetryConfig
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches metadata rows page by page.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	service    string
	pageSize   int
	maxRecords int
	retry      RetryConfig
	logger     *zap.Logger
}

// New creates a client. The API key is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("seoul api key is required")
	}
	c := &Client{
		http:       cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		service:    cfg.Service,
		pageSize:   cfg.PageSize,
		maxRecords: cfg.MaxRecords,
		retry:      cfg.Retry,
		logger:     cfg.Logger,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.service == "" {
		c.service = DefaultService
	}
	if c.pageSize <= 0 || c.pageSize > MaxPageSize {
		c.pageSize = MaxPageSize
	}
	if c.maxRecords <= 0 {
		c.maxRecords = DefaultMaxRecords
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

type envelope struct {
	Total  int               `json:"list_total_count"`
	Result resultCode        `json:"RESULT"`
	Rows   []json.RawMessage `json:"row"`
}

type resultCode struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type page struct {
	total int
	rows  []ingest.Row
}

// Fetch reads pages of up to 1000 rows until the service reports no more
// data or the configured maximum is reached.
func (c *Client) Fetch(ctx context.Context) ([]ingest.Row, error) {
	start := time.Now()
	var rows []ingest.Row

	for first := 1; first <= c.maxRecords; first += c.pageSize {
		last := min(first+c.pageSize-1, c.maxRecords)

		p, err := withRetry(ctx, c.retry, func() (page, error) {
			return c.fetchPage(ctx, first, last)
		})
		if err != nil {
			metrics.SourceFetchPagesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("fetch rows %d-%d: %w", first, last, err)
		}
		metrics.SourceFetchPagesTotal.WithLabelValues("ok").Inc()
		rows = append(rows, p.rows...)

		c.logger.Debug("page fetched",
			zap.Int("first", first),
			zap.Int("last", last),
			zap.Int("rows", len(p.rows)),
			zap.Int("total", p.total),
		)
		if len(p.rows) < last-first+1 || (p.total > 0 && last >= p.total) {
			break
		}
	}

	metrics.SourceFetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("open-data fetch complete", zap.Int("rows", len(rows)), zap.Duration("took", time.Since(start)))
	return rows, nil
}

func (c *Client) pageURL(first, last int) string {
	return fmt.Sprintf("%s/%s/json/%s/%d/%d",
		c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(c.service), first, last)
}

func (c *Client) fetchPage(ctx context.Context, first, last int) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(first, last), http.NoBody)
	if err != nil {
		return page{}, permanent(fmt.Errorf("%w: build request: %w", ErrUpstream, err))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return page{}, permanent(ctx.Err())
		}
		return page{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page{}, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return page{}, err
		}
		return page{}, permanent(err)
	}
	return c.decodePage(body)
}

// decodePage accepts both the service-keyed envelope and the bare RESULT
// object the API returns for errors.
func (c *Client) decodePage(body []byte) (page, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return page{}, permanent(fmt.Errorf("%w: decode response: %w", ErrUpstream, err))
	}

	raw, ok := doc[c.service]
	if !ok {
		var rc resultCode
		if r, has := doc["RESULT"]; has && json.Unmarshal(r, &rc) == nil {
			if rc.Code == codeNoData {
				return page{}, nil
			}
			return page{}, permanent(fmt.Errorf("%w: %s %s", ErrUpstream, rc.Code, rc.Message))
		}
		return page{}, permanent(fmt.Errorf("%w: response has no %s object", ErrUpstream, c.service))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return page{}, permanent(fmt.Errorf("%w: decode %s: %w", ErrUpstream, c.service, err))
	}
	if env.Result.Code != "" && env.Result.Code != codeOK {
		if env.Result.Code == codeNoData {
			return page{}, nil
		}
		return page{}, permanent(fmt.Errorf("%w: %s %s", ErrUpstream, env.Result.Code, env.Result.Message))
	}

	rows := make([]ingest.Row, 0, len(env.Rows))
	for i, r := range env.Rows {
		row, err := decodeRow(r)
		if err != nil {
			return page{}, permanent(fmt.Errorf("%w: row %d: %w", ErrUpstream, i, err))
		}
		rows = append(rows, row)
	}
	return page{total: env.Total, rows: rows}, nil
}

// decodeRow flattens one JSON object to strings; numbers keep their literal
// text and nulls become empty.
func decodeRow(raw json.RawMessage) (ingest.Row, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	row := make(ingest.Row, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = x
		case json.Number:
			row[k] = x.String()
		case bool:
			row[k] = strconv.FormatBool(x)
		default:
			b, _ := json.Marshal(x)
			row[k] = string(b)
		}
	}
	return row, nil
}
