package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"orrery/camera"
	"orrery/celestial"
)

// Stream connection tuning
const (
	WRITE_WAIT       = 10 * time.Second
	PONG_WAIT        = 60 * time.Second
	PING_PERIOD      = (PONG_WAIT * 9) / 10
	MAX_INPUT_BYTES  = 1024
	MAX_POINTER_STEP = 10000 // pixels per pointer message
)

// Client to server message types
const (
	MSG_KEYS    = "keys"
	MSG_POINTER = "pointer"
	MSG_ZOOM    = "zoom"
	MSG_FOCUS   = "focus"
)

// Server to client message types
const (
	MSG_HELLO = "hello"
	MSG_FRAME = "frame"
	MSG_ERROR = "error"
)

var errBadInput = errors.New("malformed input")

type clientMessage struct {
	Type  string       `json:"type"`
	Keys  *camera.Keys `json:"keys,omitempty"`
	DX    float64      `json:"dx,omitempty"`
	DY    float64      `json:"dy,omitempty"`
	Delta float64      `json:"delta,omitempty"`
	ID    string       `json:"id,omitempty"`
}

type helloMessage struct {
	Type     string   `json:"type"`
	Snapshot Snapshot `json:"snapshot"`
}

// frameMessage carries every body's new position, which is also the point
// just appended to its trajectory, plus this viewer's camera.
type frameMessage struct {
	Type    string          `json:"type"`
	Index   uint64          `json:"index"`
	Elapsed float64         `json:"elapsed"`
	Bodies  json.RawMessage `json:"bodies"`
	Camera  camera.Pose     `json:"camera"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// streamSession is one connected viewer. The rig is guarded by mu because
// the read pump and the frame broadcast both touch it.
type streamSession struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string

	mu    sync.Mutex
	rig   *camera.Rig
	input *rate.Limiter
}

// StreamHub fans frames out to every viewer of the shared simulation.
type StreamHub struct {
	sim      *Simulation
	metrics  *MetricsCollector
	upgrader websocket.Upgrader

	inputRate  rate.Limit
	inputBurst int
	sendBuffer int

	mu       sync.RWMutex
	sessions map[*streamSession]struct{}
	closed   bool
}

func NewStreamHub(sim *Simulation, metrics *MetricsCollector, origins *OriginValidator, cfg Config) *StreamHub {
	return &StreamHub{
		sim:     sim,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     origins.CheckOrigin,
		},
		inputRate:  rate.Limit(cfg.InputPerSecond),
		inputBurst: cfg.InputBurst,
		sendBuffer: cfg.SendBuffer,
		sessions:   make(map[*streamSession]struct{}),
	}
}

// ServeHTTP upgrades the request and runs the session until the viewer
// disconnects.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Stream upgrade from %s failed: %v", r.RemoteAddr, err)
		h.metrics.RecordRejected("upgrade")
		return
	}

	s := &streamSession{
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		remote: r.RemoteAddr,
		rig:    camera.NewRig(),
		input:  rate.NewLimiter(h.inputRate, h.inputBurst),
	}

	hello, err := json.Marshal(helloMessage{Type: MSG_HELLO, Snapshot: h.sim.Snapshot()})
	if err != nil {
		log.Printf("Encoding hello for %s: %v", s.remote, err)
		conn.Close()
		return
	}
	s.send <- hello

	if !h.register(s) {
		conn.Close()
		return
	}
	log.Printf("Stream viewer connected: %s", s.remote)

	go h.writePump(s)
	h.readPump(s)
}

func (h *StreamHub) register(s *streamSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.metrics.ClientConnected()
	return true
}

func (h *StreamHub) unregister(s *streamSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	close(s.send)
	h.metrics.ClientDisconnected()
}

// Len returns the number of connected viewers.
func (h *StreamHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast moves every viewer's camera by one frame and queues the frame
// for it. A viewer whose queue is full misses this frame.
func (h *StreamHub) Broadcast(frame celestial.Frame) {
	bodies, err := json.Marshal(frame.Bodies)
	if err != nil {
		log.Printf("Encoding frame %d: %v", frame.Index, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions {
		s.mu.Lock()
		s.rig.Update()
		pose := s.rig.Pose()
		s.mu.Unlock()

		msg, err := json.Marshal(frameMessage{
			Type:    MSG_FRAME,
			Index:   frame.Index,
			Elapsed: frame.Elapsed,
			Bodies:  bodies,
			Camera:  pose,
		})
		if err != nil {
			log.Printf("Encoding frame for %s: %v", s.remote, err)
			continue
		}

		select {
		case s.send <- msg:
			h.metrics.RecordMessage("out", MSG_FRAME)
		default:
			h.metrics.RecordDroppedFrame()
		}
	}
}

// Close disconnects every viewer and refuses new ones.
func (h *StreamHub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*streamSession, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(WRITE_WAIT))
		h.unregister(s)
	}
}

func (h *StreamHub) writePump(s *streamSession) {
	ticker := time.NewTicker(PING_PERIOD)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHub) readPump(s *streamSession) {
	defer func() {
		h.unregister(s)
		log.Printf("Stream viewer disconnected: %s", s.remote)
	}()

	s.conn.SetReadLimit(MAX_INPUT_BYTES)
	s.conn.SetReadDeadline(time.Now().Add(PONG_WAIT))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(PONG_WAIT))
	})

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.metrics.RecordRejected("malformed")
				h.reply(s, errBadInput)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Stream read from %s: %v", s.remote, err)
			}
			return
		}

		if !s.input.Allow() {
			h.metrics.RecordRejected("input_rate")
			continue
		}
		h.metrics.RecordMessage("in", msg.Type)

		if err := h.handleInput(s, msg); err != nil {
			h.metrics.RecordRejected("invalid")
			h.reply(s, err)
		}
	}
}

// handleInput applies one viewer message to that viewer's rig.
func (h *StreamHub) handleInput(s *streamSession, msg clientMessage) error {
	switch msg.Type {
	case MSG_KEYS:
		if msg.Keys == nil {
			return errBadInput
		}
		s.mu.Lock()
		s.rig.SetKeys(*msg.Keys)
		s.mu.Unlock()

	case MSG_POINTER:
		dx := mgl64.Clamp(msg.DX, -MAX_POINTER_STEP, MAX_POINTER_STEP)
		dy := mgl64.Clamp(msg.DY, -MAX_POINTER_STEP, MAX_POINTER_STEP)
		s.mu.Lock()
		s.rig.PointerMove(dx, dy)
		s.mu.Unlock()

	case MSG_ZOOM:
		s.mu.Lock()
		s.rig.Zoom(msg.Delta)
		s.mu.Unlock()

	case MSG_FOCUS:
		pos, radius, err := h.sim.Locate(msg.ID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		err = s.rig.LookAt(mgl64.Vec3{pos.X, pos.Y, pos.Z}, radius)
		s.mu.Unlock()
		return err

	default:
		return errBadInput
	}
	return nil
}

// reply queues an error message without blocking the read pump.
func (h *StreamHub) reply(s *streamSession, err error) {
	msg, _ := json.Marshal(errorMessage{Type: MSG_ERROR, Error: err.Error()})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	select {
	case s.send <- msg:
		h.metrics.RecordMessage("out", MSG_ERROR)
	default:
	}
}
