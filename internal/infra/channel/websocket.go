package channel

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout  = 10 * time.Second
	defaultSendQueueSize = 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is one method invocation sent to a WebSocket client
type Frame struct {
	ID     string                 `json:"id"`
	Method string                 `json:"method"`
	Args   map[string]interface{} `json:"args"`
}

// wsSink delivers invocations as JSON frames on one connection.
// Invoke only enqueues; writeLoop owns every data write. A failed write or
// a full queue marks the sink failed and onFail detaches it.
type wsSink struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	send      chan Frame
	done      chan struct{}
	closeOnce sync.Once
	failOnce  sync.Once
	onFail    func()
}

func newWSSink(conn *websocket.Conn, queueSize int, writeTimeout time.Duration, onFail func()) *wsSink {
	return &wsSink{
		id:           "ws:" + uuid.New().String(),
		conn:         conn,
		writeTimeout: writeTimeout,
		send:         make(chan Frame, queueSize),
		done:         make(chan struct{}),
		onFail:       onFail,
	}
}

func (s *wsSink) ID() string {
	return s.id
}

func (s *wsSink) Invoke(method string, args map[string]interface{}) error {
	select {
	case <-s.done:
		return fmt.Errorf("connection closed")
	default:
	}

	select {
	case s.send <- Frame{ID: uuid.New().String(), Method: method, Args: args}:
		return nil
	default:
		err := fmt.Errorf("send queue full, dropped %s", method)
		s.fail(err)
		return err
	}
}

func (s *wsSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *wsSink) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.fail(err)
				return
			}
		}
	}
}

// fail runs onFail once on its own goroutine. Invoke is called under the
// router lock and detaching re-enters the router.
func (s *wsSink) fail(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	s.failOnce.Do(func() {
		fmt.Printf("[Channel] Sink %s failed: %v\n", s.id, err)
		if s.onFail != nil {
			go s.onFail()
		}
	})
}

// ServeWS upgrades the request and attaches the connection as a sink until
// the client goes away or a write fails. Incoming frames are read and discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("[Channel] WebSocket upgrade failed: %v\n", err)
		return
	}

	sink := newWSSink(conn, h.wsQueueSize, h.wsWriteTimeout, nil)
	sink.onFail = func() { h.Detach(sink.id) }
	go sink.writeLoop()
	h.Attach(sink)
	defer h.Detach(sink.id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
