// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"motor-picker/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const defaultConnectTimeout = 10 * time.Second

// Client wraps the Zeebe gRPC client used by the workflow workers.
type Client struct {
	zb             zbc.Client
	connectTimeout time.Duration
}

// NewClient dials the broker and checks the topology once so that a bad
// address fails at startup rather than on the first poll.
func NewClient(ctx context.Context, cfg config.CamundaConfig) (*Client, error) {
	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	timeout := defaultConnectTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Millisecond
	}
	c := &Client{zb: zb, connectTimeout: timeout}

	if err := c.Ping(ctx); err != nil {
		zb.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

func (c *Client) Zeebe() zbc.Client {
	return c.zb
}

// Ping sends a topology request.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	if _, err := c.zb.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.zb.Close()
}

// IsRetryable reports whether a broker error looks transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
