package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderboard/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to the orderboard HTTP API. It satisfies the board's Gateway.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the API at baseURL. An empty baseURL gives a
// client whose every call fails with ErrConfiguration.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: strings.TrimRight(strings.TrimSpace(baseURL), "/"), http: hc}
}

type problem struct {
	Type   string            `json:"type"`
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.base == "" {
		return domain.ErrConfiguration
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrConfiguration, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeProblem(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w: %w", method, path, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// decodeProblem maps an error response back onto the error taxonomy.
func decodeProblem(method, path string, resp *http.Response) error {
	var p problem
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&p)
	if p.Detail == "" {
		p.Detail = resp.Status
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		fields := p.Fields
		if len(fields) == 0 {
			fields = map[string]string{"request": p.Detail}
		}
		return &domain.ValidationError{Fields: fields}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %s: %w", method, path, p.Detail, domain.ErrNotFound)
	case p.Type == "configuration_error":
		return fmt.Errorf("%s %s: %s: %w", method, path, p.Detail, domain.ErrConfiguration)
	default:
		return fmt.Errorf("%s %s: %s: %w", method, path, p.Detail, domain.ErrStoreUnavailable)
	}
}

func (c *Client) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	var out []domain.Dish
	if err := c.do(ctx, http.MethodGet, "/api/dishes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDish(ctx context.Context, in domain.DishInput) (domain.Dish, error) {
	var out domain.Dish
	err := c.do(ctx, http.MethodPost, "/api/dishes", in, &out)
	return out, err
}

func (c *Client) UpdateDish(ctx context.Context, id string, in domain.DishInput) (domain.Dish, error) {
	var out domain.Dish
	err := c.do(ctx, http.MethodPut, "/api/dishes/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteDish(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/dishes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ClearAllDishes(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/dishes", nil, nil)
}

func (c *Client) ListOrders(ctx context.Context, window time.Duration) ([]domain.Order, error) {
	path := "/api/orders"
	if window > 0 {
		path += "?window=" + url.QueryEscape(window.String())
	}
	var out []domain.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, http.MethodPost, "/api/orders", req, &out)
	return out, err
}

func (c *Client) SetOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), domain.StatusRequest{Status: string(status)}, &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ClearDoneOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/orders?status="+string(domain.StatusDone), nil, nil)
}

func (c *Client) ClearAllOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/orders", nil, nil)
}
