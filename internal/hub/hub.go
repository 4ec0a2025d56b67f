// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package hub bridges the device's switch endpoints to observers over
// WebSocket. It implements the device's Reporter and delivers observer
// writes back through a change callback.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hallewell/modelink/internal/device"
)

// Event is one endpoint state notification on the wire. Forced marks a
// Report, i.e. an assertion delivered even when the value did not change.
type Event struct {
	Endpoint uint16 `json:"endpoint"`
	Name     string `json:"name,omitempty"`
	On       bool   `json:"on"`
	Forced   bool   `json:"forced,omitempty"`
}

// command is what an observer sends to flip an endpoint.
type command struct {
	Endpoint uint16 `json:"endpoint"`
	On       bool   `json:"on"`
}

type endpoint struct {
	name string
	on   bool
}

// Hub holds the endpoint registry, the observer connections, and the change
// callback into the device.
type Hub struct {
	mu        sync.Mutex
	endpoints []endpoint
	clients   map[*client]struct{}
	callback  func(device.EndpointID, bool)

	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// New creates an empty hub. Endpoints are registered before the device
// starts and never removed.
func New() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bridge is for local observers; same-origin checks would
			// only get in the way of CLI clients.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// AddEndpoint registers a named endpoint and returns its ID.
func (h *Hub) AddEndpoint(name string) device.EndpointID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endpoints = append(h.endpoints, endpoint{name: name})
	return device.EndpointID(len(h.endpoints) - 1)
}

// SetCallback registers the change callback. It is invoked synchronously
// for observer writes and for every Report, including reports that did not
// change the value.
func (h *Hub) SetCallback(fn func(device.EndpointID, bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = fn
}

// Report asserts the endpoint value and always notifies: every observer
// gets the event and the callback fires even when the value is unchanged.
func (h *Hub) Report(id device.EndpointID, on bool) error {
	return h.set(id, on, true)
}

// Update sets the endpoint value and notifies only on an actual change.
func (h *Hub) Update(id device.EndpointID, on bool) error {
	return h.set(id, on, false)
}

func (h *Hub) set(id device.EndpointID, on bool, forced bool) error {
	h.mu.Lock()
	if int(id) >= len(h.endpoints) {
		h.mu.Unlock()
		return fmt.Errorf("unknown endpoint %d", id)
	}
	changed := h.endpoints[id].on != on
	h.endpoints[id].on = on
	name := h.endpoints[id].name
	callback := h.callback
	h.mu.Unlock()

	if !forced && !changed {
		return nil
	}

	if callback != nil {
		callback(id, on)
	}
	h.broadcast(Event{Endpoint: uint16(id), Name: name, On: on, Forced: forced})
	return nil
}

// applyObserver handles a write received from a connected observer.
func (h *Hub) applyObserver(cmd command) {
	h.mu.Lock()
	if int(cmd.Endpoint) >= len(h.endpoints) {
		h.mu.Unlock()
		log.Printf("[hub] observer wrote unknown endpoint %d", cmd.Endpoint)
		return
	}
	h.endpoints[cmd.Endpoint].on = cmd.On
	name := h.endpoints[cmd.Endpoint].name
	callback := h.callback
	h.mu.Unlock()

	if callback != nil {
		callback(device.EndpointID(cmd.Endpoint), cmd.On)
	}
	h.broadcast(Event{Endpoint: cmd.Endpoint, Name: name, On: cmd.On})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// Slow observer; drop the event rather than stall the device.
			log.Printf("[hub] dropping event for slow observer")
		}
	}
}

// snapshot returns the current endpoint values as events.
func (h *Hub) snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	events := make([]Event, len(h.endpoints))
	for i, ep := range h.endpoints {
		events[i] = Event{Endpoint: uint16(i), Name: ep.name, On: ep.on}
	}
	return events
}

// Handler returns the HTTP handler exposing /ws and /state.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/state", h.serveState)
	return mux
}

// Run serves the bridge on addr until the context is cancelled.
func (h *Hub) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Printf("[hub] listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func (h *Hub) serveState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot()); err != nil {
		log.Printf("[hub] encode state: %v", err)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[hub] upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("[hub] observer connected from %s", conn.RemoteAddr())

	// Prime the new observer with the full current state.
	for _, ev := range h.snapshot() {
		c.send <- ev
	}

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[hub] bad observer message: %v", err)
			continue
		}
		h.applyObserver(cmd)
	}
}

func (h *Hub) writeLoop(c *client) {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
	log.Printf("[hub] observer disconnected")
}
