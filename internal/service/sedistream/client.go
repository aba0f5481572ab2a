package sedistream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"SediPull/internal/domain/models"
	drepo "SediPull/internal/domain/repository"
	"SediPull/pkg/logger"
)

// Client implements an AlertStream backed by the filing-feed WebSocket.
// The feed pushes one frame per disclosure; the scanner decides when a
// frame is worth a rescan.
type Client struct {
	token          string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a filing-feed AlertStream.
func New(token, websocketURL string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.AlertStream {
	return &Client{
		token:          token,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection and subscribes to the
// filings channel.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.token != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("filing stream connect: %w", err)
	}
	c.conn = conn
	c.connected = true

	sub := map[string]string{"type": "subscribe", "channel": "filings"}
	if err := c.conn.WriteJSON(sub); err != nil {
		_ = c.Close()
		return fmt.Errorf("filing stream subscribe: %w", err)
	}

	c.log.Info("filing stream connected", logger.String("url", c.websocketURL))
	return nil
}

type feedFrame struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// Read streams filing alerts and errors. A read failure terminates both
// channels; the caller owns reconnect policy.
func (c *Client) Read(ctx context.Context) (<-chan models.FilingAlert, <-chan error) {
	alerts := make(chan models.FilingAlert, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(alerts)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("filing stream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("filing stream read: %w", err)
					return
				}
				var f feedFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-JSON control frames
					continue
				}
				if f.Type != "filing" || f.Symbol == "" {
					continue
				}
				alert := models.FilingAlert{
					Symbol:    strings.ToUpper(f.Symbol),
					Timestamp: time.Unix(f.Timestamp, 0),
				}
				select {
				case alerts <- alert:
				default:
					// drop on backpressure: the scanner rescans the
					// whole symbol anyway, a lost alert only delays it
				}
			}
		}
	}()

	return alerts, errs
}

// Reconnect closes and reconnects after the configured delay.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	return c.Connect(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
