// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package telemetry

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Client subscribes to a telemetry server and decodes frames.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a telemetry server with optional HTTP Basic auth.
// skipTLSVerify only applies to wss:// endpoints.
func Dial(ctx context.Context, wsURL, username, password string, skipTLSVerify bool) (*Client, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipTLSVerify}
	}

	headers := http.Header{}
	if username != "" || password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connection failed: %v", err)
	}
	return &Client{conn: conn}, nil
}

// ReadFrame blocks until the next telemetry frame arrives. Non-binary
// messages sharing the socket are skipped.
func (c *Client) ReadFrame() (*Frame, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		return DecodeFrame(data)
	}
}

// Close closes the subscription.
func (c *Client) Close() error {
	return c.conn.Close()
}
