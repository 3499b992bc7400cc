// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package telemetry

import (
	"crypto/subtle"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Server broadcasts telemetry frames to WebSocket subscribers. Create with
// NewServer, register its Handler on an HTTP mux and feed it with Broadcast.
type Server struct {
	username string
	password string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a broadcast server. Empty credentials disable HTTP
// Basic auth.
func NewServer(username, password string) *Server {
	return &Server{
		username: username,
		password: password,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades subscribers. Subscribers only receive; inbound messages
// are read and dropped to service control frames.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="aquaflow"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("telemetry: upgrade failed: %v", err)
			return
		}

		s.mu.Lock()
		s.clients[conn] = struct{}{}
		n := len(s.clients)
		s.mu.Unlock()
		log.Printf("telemetry: subscriber connected (%d active)", n)

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					s.drop(conn)
					return
				}
			}
		}()
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.username == "" && s.password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) == 1
	return userOK && passOK
}

// Broadcast encodes one frame and sends it to every subscriber. Slow or
// broken subscribers are dropped rather than stalling the decode path.
func (s *Server) Broadcast(f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.BinaryMessage, data); err != nil {
			s.drop(c)
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, present := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()

	if present {
		conn.Close()
		log.Printf("telemetry: subscriber dropped")
	}
}
