package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

const (
	defaultPageSize  = 100
	totalPagesHeader = "X-WP-TotalPages"
)

type Options struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	// PageSize defaults to 100, the API maximum.
	PageSize int
}

// Client is a commerce.Source over the WooCommerce REST API.
type Client struct {
	base     string
	key      string
	secret   string
	pageSize int
	http     *http.Client
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("woocommerce base url is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("woocommerce base url: %w", err)
	}
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		key:      opts.ConsumerKey,
		secret:   opts.ConsumerSecret,
		pageSize: size,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.CustomerFacts, error) {
	raw, err := listAll[Customer](ctx, c, "/wp-json/wc/v3/customers", url.Values{"role": {"all"}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CustomerFacts, 0, len(raw))
	for _, cu := range raw {
		out = append(out, cu.Facts())
	}
	return out, nil
}

func (c *Client) ListSubscriptions(ctx context.Context) ([]domain.SubscriptionFacts, error) {
	raw, err := listAll[Subscription](ctx, c, "/wp-json/wc/v3/subscriptions", nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SubscriptionFacts, 0, len(raw))
	for _, s := range raw {
		out = append(out, s.Facts())
	}
	return out, nil
}

// listAll walks page=1..X-WP-TotalPages.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	for page, total := 1, 1; page <= total; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("per_page", strconv.Itoa(c.pageSize))
		q.Set("page", strconv.Itoa(page))

		var items []T
		hdr, err := c.get(ctx, path, q, &items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		if n, err := strconv.Atoi(hdr.Get(totalPagesHeader)); err == nil && n > total {
			total = n
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) (http.Header, error) {
	op := "GET " + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &gateway.Error{Gateway: "woocommerce", Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gateway.Error{Gateway: "woocommerce", Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode/100 != 2 {
		ge := &gateway.Error{Gateway: "woocommerce", Op: op, Status: resp.StatusCode}
		var payload map[string]any
		if json.Unmarshal(body, &payload) == nil {
			ge.Payload = payload
		}
		return nil, ge
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, &gateway.Error{Gateway: "woocommerce", Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return resp.Header, nil
}
