package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	"github.com/MrSnakeDoc/scholardesk/internal/utils"
)

// DefaultTimeout bounds a relay POST.
const DefaultTimeout = 10 * time.Second

// payload is the form body the relay endpoint expects.
type payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	ID      string `json:"_id,omitempty"`
}

// Client forwards suggestions to a third-party form endpoint.
// A Client with an empty endpoint is disabled and drops everything.
type Client struct {
	endpoint string
	http     *http.Client
	logger   logger.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewClient creates a relay client. timeout <= 0 uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   log,
		timeout:  timeout,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Send posts s and waits for the answer.
func (c *Client) Send(ctx context.Context, s *domain.Suggestion) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload{Name: s.Name, Email: s.Email, Message: s.Message, ID: s.ID})
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer utils.Close(resp.Body)
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay endpoint returned %s", resp.Status)
	}
	return nil
}

// Dispatch sends s in the background. Failures are logged, never returned.
func (c *Client) Dispatch(s *domain.Suggestion) {
	if !c.Enabled() {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.Send(ctx, s); err != nil {
			c.logger.Warn("failed to relay suggestion",
				logger.String("suggestion_id", s.ID),
				logger.Error(err))
			return
		}
		c.logger.Debug("suggestion relayed", logger.String("suggestion_id", s.ID))
	}()
}

// Wait blocks until every dispatched suggestion has been handled.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}
