// Package comedorapi is the HTTP client for the comedores backend: the
// promotion catalog read endpoint and the order submission endpoint. The
// order status stream has its own adapter in internal/stream.
package comedorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comedores/internal/cart"
	"comedores/internal/checkout"
	"comedores/internal/promo"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Client struct {
	baseURL  string
	identity string
	http     *http.Client
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewClient builds a client for the backend at baseURL. identity is the
// user's email; it rides along on submissions so pushed status events reach
// the right stream subscription.
func NewClient(baseURL, identity string, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: identity,
		http:     &http.Client{Timeout: 15 * time.Second},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// FetchPromotions loads the active promotion catalog. Records that fail
// validation are logged and skipped rather than poisoning the whole catalog;
// the result is treated as immutable input for the pricing session.
func (c *Client) FetchPromotions(ctx context.Context) ([]promo.Promotion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/promotions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch promotions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch promotions: unexpected status %d", resp.StatusCode)
	}

	var records []promo.Promotion
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode promotions: %w", err)
	}

	catalog := records[:0]
	for _, p := range records {
		if err := c.validate.Struct(p); err != nil {
			c.logger.Warnw("skipping invalid promotion record", "id", p.ID, "name", p.Name, "error", err)
			continue
		}
		catalog = append(catalog, p)
	}
	return catalog, nil
}

type submitRequest struct {
	Email string      `json:"email,omitempty"`
	Items []cart.Item `json:"items"`
}

type submitResponse struct {
	Success     bool             `json:"success"`
	OrderNumber string           `json:"orderNumber"`
	PricedCart  promo.PricedCart `json:"pricedCart"`
}

type submitErrorBody struct {
	Error       string `json:"error"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Message     string `json:"message"`
}

// SubmitOrder posts the cart snapshot. The server re-validates stock and
// computes the authoritative discount; this client only interprets the
// outcome into the checkout error taxonomy.
func (c *Client) SubmitOrder(ctx context.Context, snap cart.Snapshot) (*checkout.Confirmation, error) {
	body, err := json.Marshal(submitRequest{Email: c.identity, Items: snap.Items})
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "encode order", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "submit order", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var out submitResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, &checkout.SubmissionError{Message: "decode confirmation", Err: err}
		}
		if !out.Success || out.OrderNumber == "" {
			return nil, &checkout.SubmissionError{Message: "malformed confirmation"}
		}
		return &checkout.Confirmation{OrderNumber: out.OrderNumber, Priced: out.PricedCart}, nil

	case resp.StatusCode == http.StatusConflict:
		var eb submitErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error == "insufficient_stock" {
			return nil, &checkout.StockConflictError{
				ProductName: eb.ProductName,
				Requested:   eb.Requested,
				Available:   eb.Available,
			}
		}
		return nil, &checkout.SubmissionError{Message: fmt.Sprintf("status %d", resp.StatusCode)}

	default:
		var eb submitErrorBody
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Message != "" {
			msg = eb.Message
		}
		return nil, &checkout.SubmissionError{Message: msg}
	}
}
