package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix is followed by the user id: didyouthough.changes.<user>.
const SubjectPrefix = "didyouthough.changes."

// ChangeEvent tells subscribers that something changed for a user. It does
// not carry the changed rows; receivers re-fetch.
type ChangeEvent struct {
	Table  string    `json:"table"`
	Op     string    `json:"op"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

func Subject(userID string) string {
	return SubjectPrefix + userID
}

type Client struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewClient(ctx context.Context, url, token string, logger *zap.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("didyouthough"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Notify publishes a change for the user named in ev.
func (c *Client) Notify(_ context.Context, ev ChangeEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := c.conn.Publish(Subject(ev.UserID), payload); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe delivers every change for userID to handler until the returned
// function is called. Malformed messages are logged and skipped.
func (c *Client) Subscribe(userID string, handler func(ChangeEvent)) (func(), error) {
	subject := Subject(userID)
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev ChangeEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.Warn("dropping malformed change event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		handler(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.logger.Debug("subscribed", zap.String("subject", subject))

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Debug("unsubscribe failed", zap.String("subject", subject), zap.Error(err))
		}
	}, nil
}

// Flush waits until the server has processed everything published so far.
func (c *Client) Flush() error {
	return c.conn.Flush()
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
