package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// SSETransport subscribes to the backend's server-sent-events endpoint
// (GET {base}/orders/notifications/stream?email=<identity>).
type SSETransport struct {
	baseURL string
	client  *http.Client
}

// NewSSETransport builds a transport against baseURL. The HTTP client is
// created without a global timeout: the stream is long-lived by design and
// is shut down through the connect context instead.
func NewSSETransport(baseURL string) *SSETransport {
	return &SSETransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (t *SSETransport) Connect(ctx context.Context, identity string) (Conn, error) {
	endpoint := fmt.Sprintf("%s/orders/notifications/stream?email=%s", t.baseURL, url.QueryEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("order stream: unexpected status %d", resp.StatusCode)
	}

	return &sseConn{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

type sseConn struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Receive returns the data payload of the next event. Comment lines and
// event/id/retry fields are skipped; multi-line data fields are joined per
// the SSE framing rules.
func (c *sseConn) Receive() ([]byte, error) {
	var data []string
	for c.scanner.Scan() {
		line := c.scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				return []byte(strings.Join(data, "\n")), nil
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (c *sseConn) Close() error {
	return c.body.Close()
}
