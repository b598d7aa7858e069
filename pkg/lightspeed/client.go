package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	// Limit error-body reads so we don't accidentally slurp huge responses.
	maxErrBodyBytes = 4096
)

// Client talks to the Lightspeed Retail V3 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Lightspeed API client. baseURL is the V3 API root,
// e.g. https://api.lightspeedapp.com/API/V3.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// SaleLinesQuery carries the filters for one sale line page fetch.
type SaleLinesQuery struct {
	// Limit is the page size requested from the provider.
	Limit int
	// StartDate and EndDate are optional YYYY-MM-DD bounds.
	StartDate string
	EndDate   string
	// Cursor, when set, is a complete next-page URL returned by the provider
	// and is requested verbatim. All other query fields are ignored.
	Cursor string
}

// FetchSaleLines fetches one page of sale lines sorted newest first with the
// Item, Sale and TaxClass relations expanded. Non-2xx responses are returned
// as *APIError for the caller to interpret.
func (c *Client) FetchSaleLines(ctx context.Context, accessToken, accountID string, q SaleLinesQuery) (*SaleLinePage, error) {
	reqURL := q.Cursor
	if reqURL == "" {
		params := url.Values{}
		params.Set("sort", "-timeStamp")
		params.Set("limit", strconv.Itoa(q.Limit))
		params.Set("load_relations", "Item,Sale,TaxClass")
		if q.StartDate != "" && q.EndDate != "" {
			filter := fmt.Sprintf("timeStamp >= %s 00:00:00 AND timeStamp <= %s 23:59:59", q.StartDate, q.EndDate)
			params.Set("filter", filter)
		}
		reqURL = fmt.Sprintf("%s/Account/%s/SaleLine.json?%s", c.baseURL, accountID, params.Encode())
	}

	var page SaleLinePage
	if err := c.getJSON(ctx, "sale_lines", accessToken, reqURL, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchItem fetches detail for a single item.
func (c *Client) FetchItem(ctx context.Context, accessToken, accountID, itemID string) (*Item, error) {
	reqURL := fmt.Sprintf("%s/Account/%s/Item/%s.json", c.baseURL, accountID, itemID)

	var page ItemPage
	if err := c.getJSON(ctx, "item_detail", accessToken, reqURL, &page); err != nil {
		return nil, err
	}
	if page.Item == nil {
		return nil, fmt.Errorf("item %s: response missing Item", itemID)
	}
	return page.Item, nil
}

// FetchCustomers fetches customer records for the given IDs in one request
// using an "customerID IN (...)" filter.
func (c *Client) FetchCustomers(ctx context.Context, accessToken, accountID string, customerIDs []string) ([]Customer, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}

	filter := "customerID IN (" + joinIDs(customerIDs) + ")"
	params := url.Values{}
	params.Set("filter", filter)
	params.Set("limit", "100")
	reqURL := fmt.Sprintf("%s/Account/%s/Customer.json?%s", c.baseURL, accountID, params.Encode())

	var page CustomerPage
	if err := c.getJSON(ctx, "customers", accessToken, reqURL, &page); err != nil {
		return nil, err
	}
	return page.Customers, nil
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, operation, accessToken, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	timer := prometheus.NewTimer(metrics.UpstreamRequestDuration.WithLabelValues(operation))
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return fmt.Errorf("call %s endpoint: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	limited := io.LimitReader(resp.Body, maxErrBodyBytes)
	b, err := io.ReadAll(limited)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
}
