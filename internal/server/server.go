// Package server streams simulation frames to browser clients over
// websockets. The hub implements sim.Observer, so it can be attached
// to a stepper and broadcasts after each iteration.
package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ddsim/dd2d/internal/crystal"
)

type FrameData struct {
	Type      string       `json:"type"`
	Iteration int          `json:"iteration"`
	Time      float64      `json:"time"`
	Count     int          `json:"count"`
	Planes    []PlaneFrame `json:"planes"`
}

type PlaneFrame struct {
	Grain       int       `json:"grain"`
	Plane       int       `json:"plane"`
	Extent      []float64 `json:"extent"`
	Coordinates []float64 `json:"coordinates"`
	Signs       []int     `json:"signs"`
	Sources     []float64 `json:"sources"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	frameMu   sync.RWMutex
	lastFrame FrameData

	minInterval time.Duration
	lastSent    time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*websocket.Conn]*sync.Mutex),
		minInterval: 50 * time.Millisecond,
	}
}

// OnStep captures and broadcasts a frame. Broadcasts are rate limited
// so fast runs do not flood slow clients; the captured frame is always
// updated so new connections see the latest state.
func (h *Hub) OnStep(p *crystal.Polycrystal, iteration int, t float64) {
	frame := buildFrame(p, iteration, t)

	h.frameMu.Lock()
	h.lastFrame = frame
	h.frameMu.Unlock()

	if time.Since(h.lastSent) < h.minInterval {
		return
	}
	h.lastSent = time.Now()
	h.broadcast(frame)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = connMu
	h.clientsMu.Unlock()
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		h.clientsMu.Unlock()
	}()

	h.frameMu.RLock()
	frame := h.lastFrame
	h.frameMu.RUnlock()
	connMu.Lock()
	conn.WriteJSON(frame)
	connMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) broadcast(frame FrameData) {
	h.clientsMu.RLock()
	var failed []*websocket.Conn
	for client, mu := range h.clients {
		mu.Lock()
		err := client.WriteJSON(frame)
		mu.Unlock()
		if err != nil {
			client.Close()
			failed = append(failed, client)
		}
	}
	h.clientsMu.RUnlock()

	if len(failed) > 0 {
		h.clientsMu.Lock()
		for _, client := range failed {
			delete(h.clients, client)
		}
		h.clientsMu.Unlock()
	}
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Serve blocks on the HTTP listener with the hub mounted at /ws.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	return http.ListenAndServe(addr, mux)
}

func buildFrame(p *crystal.Polycrystal, iteration int, t float64) FrameData {
	frame := FrameData{
		Type:      "frame",
		Iteration: iteration,
		Time:      t,
		Count:     p.DislocationCount(),
	}
	for gi, g := range p.Grains() {
		for pi, sp := range g.SlipPlanes() {
			ext := sp.Extremities()
			pf := PlaneFrame{
				Grain:  gi,
				Plane:  pi,
				Extent: []float64{sp.LineCoordinate(ext[0]), sp.LineCoordinate(ext[1])},
			}
			dir := sp.LineDirection()
			for _, d := range sp.Dislocations() {
				pf.Coordinates = append(pf.Coordinates, sp.LineCoordinate(d.Position()))
				sign := 1
				if d.Burgers().Dot(dir) < 0 {
					sign = -1
				}
				pf.Signs = append(pf.Signs, sign)
			}
			for _, src := range sp.Sources() {
				pf.Sources = append(pf.Sources, sp.LineCoordinate(src.Position()))
			}
			frame.Planes = append(frame.Planes, pf)
		}
	}
	return frame
}
