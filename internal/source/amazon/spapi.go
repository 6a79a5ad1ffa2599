package amazon

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/andresuchdata/fba-weekly-summary/internal/config"
)

const (
	reportsAPIPath       = "/reports/2021-06-30"
	salesTrafficReport   = "GET_SALES_AND_TRAFFIC_REPORT"
	createReportAttempts = 8
)

var (
	reportPollInterval = 15 * time.Second
	reportPollMaxWait  = 10 * time.Minute
	throttleStep       = 30 * time.Second
	throttleMaxWait    = 180 * time.Second
)

// throttleWait is the linear backoff Amazon documents for throttled Reports
// API calls: growing waits, capped.
func throttleWait(attempt int) time.Duration {
	wait := time.Duration(attempt) * throttleStep
	if wait > throttleMaxWait {
		wait = throttleMaxWait
	}
	return wait
}

// Client is a minimal SP-API Reports client authenticated with the LWA
// refresh-token flow.
type Client struct {
	http     *http.Client
	endpoint string
}

// NewClient builds a client whose transport injects LWA access tokens.
func NewClient(ctx context.Context, cfg config.AmazonConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("missing SP-API credentials: need SPAPI_LWA_APP_ID, SPAPI_LWA_CLIENT_SECRET, SPAPI_REFRESH_TOKEN")
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Client{
		http:     oauth2.NewClient(ctx, ts),
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

type createReportRequest struct {
	ReportType     string            `json:"reportType"`
	MarketplaceIDs []string          `json:"marketplaceIds"`
	DataStartTime  string            `json:"dataStartTime"`
	DataEndTime    string            `json:"dataEndTime"`
	ReportOptions  map[string]string `json:"reportOptions,omitempty"`
}

type reportStatus struct {
	ReportID         string `json:"reportId"`
	ProcessingStatus string `json:"processingStatus"`
	ReportDocumentID string `json:"reportDocumentId"`
}

type reportDocument struct {
	URL                  string `json:"url"`
	CompressionAlgorithm string `json:"compressionAlgorithm"`
}

// SalesTraffic fetches one sales-and-traffic report covering [start, end]
// (inclusive calendar dates) and returns the per-ASIN rows. Throttled
// create-report calls back off the way Amazon documents: linearly growing
// waits, capped.
func (c *Client) SalesTraffic(ctx context.Context, marketplaceID string, start, end time.Time) ([]AsinSales, error) {
	req := createReportRequest{
		ReportType:     salesTrafficReport,
		MarketplaceIDs: []string{marketplaceID},
		DataStartTime:  start.UTC().Format("2006-01-02T00:00:00Z"),
		DataEndTime:    end.UTC().Format("2006-01-02T23:59:59Z"),
		ReportOptions: map[string]string{
			"dateGranularity": "DAY",
			"asinGranularity": "SKU",
		},
	}

	reportID, err := c.createReportWithBackoff(ctx, req)
	if err != nil {
		return nil, err
	}

	documentID, err := c.waitForReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	raw, err := c.downloadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return parseSalesTraffic(raw)
}

func (c *Client) createReportWithBackoff(ctx context.Context, req createReportRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	payload := string(body)
	for attempt := 1; attempt <= createReportAttempts; attempt++ {
		var created struct {
			ReportID string `json:"reportId"`
		}
		status, err := c.doJSON(ctx, http.MethodPost, reportsAPIPath+"/reports", strings.NewReader(payload), &created)
		if err != nil {
			return "", err
		}

		switch {
		case status == http.StatusTooManyRequests:
			wait := throttleWait(attempt)
			log.Warn().
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("spapi: throttled on create report, backing off")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		case status >= 300:
			return "", fmt.Errorf("spapi: create report returned status %d", status)
		}

		if created.ReportID == "" {
			return "", fmt.Errorf("spapi: create report response missing reportId")
		}
		return created.ReportID, nil
	}

	return "", fmt.Errorf("spapi: exceeded %d attempts creating report due to throttling", createReportAttempts)
}

func (c *Client) waitForReport(ctx context.Context, reportID string) (string, error) {
	deadline := time.Now().Add(reportPollMaxWait)

	for {
		var status reportStatus
		code, err := c.doJSON(ctx, http.MethodGet, reportsAPIPath+"/reports/"+url.PathEscape(reportID), nil, &status)
		if err != nil {
			return "", err
		}
		switch {
		case code == http.StatusTooManyRequests:
			// Throttled polls just consume the poll budget like a not-ready
			// report; the deadline check below bounds them.
			log.Warn().Str("report_id", reportID).Msg("spapi: throttled on report status poll")
		case code >= 300:
			return "", fmt.Errorf("spapi: get report %s returned status %d", reportID, code)
		}

		switch status.ProcessingStatus {
		case "DONE":
			if status.ReportDocumentID == "" {
				return "", fmt.Errorf("spapi: report %s done but no document id", reportID)
			}
			return status.ReportDocumentID, nil
		case "CANCELLED", "FATAL":
			return "", fmt.Errorf("spapi: report %s ended in status %s", reportID, status.ProcessingStatus)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("spapi: report %s not ready after %s", reportID, reportPollMaxWait)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(reportPollInterval):
		}
	}
}

func (c *Client) downloadDocument(ctx context.Context, documentID string) ([]byte, error) {
	var doc reportDocument
	for attempt := 1; ; attempt++ {
		code, err := c.doJSON(ctx, http.MethodGet, reportsAPIPath+"/documents/"+url.PathEscape(documentID), nil, &doc)
		if err != nil {
			return nil, err
		}
		if code == http.StatusTooManyRequests {
			if attempt >= createReportAttempts {
				return nil, fmt.Errorf("spapi: exceeded %d attempts fetching document %s due to throttling", createReportAttempts, documentID)
			}
			wait := throttleWait(attempt)
			log.Warn().
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("spapi: throttled on get document, backing off")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if code >= 300 {
			return nil, fmt.Errorf("spapi: get document %s returned status %d", documentID, code)
		}
		break
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.URL, nil)
	if err != nil {
		return nil, err
	}
	// The document URL is pre-signed; the LWA token must not be attached.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spapi: download document: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if strings.EqualFold(doc.CompressionAlgorithm, "GZIP") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("spapi: gunzip document: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(reader)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("spapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("spapi: decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
