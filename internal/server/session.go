package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"live-translator/internal/domain"
	"live-translator/internal/jobs"
	"live-translator/internal/orchestrator"
)

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
)

// Inbound session message types.
const (
	msgText   = "text"
	msgCancel = "cancel"
	msgSource = "source"
	msgTarget = "target"
	msgSwitch = "switch"
	msgState  = "state"
)

// clientMessage is one command sent by the browser.
type clientMessage struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	Language domain.LanguageCode `json:"language,omitempty"`
}

// stateMessage answers a state request.
type stateMessage struct {
	Type  string                   `json:"type"`
	State domain.OrchestratorState `json:"state"`
}

// channelPublisher queues orchestrator events for the session writer.
// Publish never blocks. When the writer falls behind, status events are
// dropped; any other message that does not fit ends the session via overflow.
type channelPublisher struct {
	mu       sync.Mutex
	seq      int64
	closed   bool
	out      chan any
	dropped  atomic.Int64
	overflow func()
	once     sync.Once
}

func newChannelPublisher(overflow func()) *channelPublisher {
	if overflow == nil {
		overflow = func() {}
	}
	return &channelPublisher{out: make(chan any, sendBuffer), overflow: overflow}
}

// Publish assigns sequence and timestamp, then enqueues the event.
func (p *channelPublisher) Publish(event jobs.Event) jobs.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	event.Seq = p.seq
	event.Timestamp = time.Now().UTC()
	if p.closed {
		return event
	}
	p.enqueueLocked(event, event.Type == jobs.EventTypeStatus)
	return event
}

func (p *channelPublisher) send(msg any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.enqueueLocked(msg, false)
}

func (p *channelPublisher) enqueueLocked(msg any, droppable bool) {
	select {
	case p.out <- msg:
		return
	default:
	}
	p.dropped.Add(1)
	if !droppable {
		p.once.Do(p.overflow)
	}
}

func (p *channelPublisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.out)
}

// sessionRegistry tracks live connections for health output and shutdown.
type sessionRegistry struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{conns: make(map[string]*websocket.Conn)}
}

func (r *sessionRegistry) add(id string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// closeAll closes every connection; each read loop then tears its session down.
func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		_ = conn.Close()
	}
}

// handleSession upgrades to a websocket and runs one orchestrator for it.
func (s *Server) handleSession(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return nil
	}

	id := uuid.NewString()
	logger := s.logger.With("sessionID", id)
	publisher := newChannelPublisher(func() {
		logger.Warnw("session send buffer full, closing", "buffer", sendBuffer)
		_ = conn.Close()
	})

	orch, err := orchestrator.New(s.cfg.Orchestrator, s.services.Detector, s.services.Translator, publisher, logger)
	if err != nil {
		logger.Errorw("failed to create session orchestrator", "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "translator unavailable"))
		_ = conn.Close()
		return nil
	}

	s.sessions.add(id, conn)
	logger.Infow("session opened", "remote", c.RealIP())

	writerDone := make(chan struct{})
	go s.writeLoop(conn, publisher, logger, writerDone)

	publisher.send(stateMessage{Type: msgState, State: orch.State()})
	s.readLoop(conn, orch, publisher, logger)

	orch.Close()
	publisher.close()
	<-writerDone
	_ = conn.Close()
	s.sessions.remove(id)
	logger.Infow("session closed", "droppedEvents", publisher.dropped.Load())
	return nil
}

// readLoop applies client commands until the connection fails.
func (s *Server) readLoop(conn *websocket.Conn, orch *orchestrator.Orchestrator, publisher *channelPublisher, logger *zap.SugaredLogger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnw("websocket read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			publisher.send(jobs.Event{Type: jobs.EventTypeError, Message: "invalid message: " + err.Error()})
			continue
		}

		switch msg.Type {
		case msgText:
			orch.Notify(msg.Text)
		case msgCancel:
			orch.Cancel()
		case msgSource:
			err = orch.SetSourceLanguage(msg.Language)
		case msgTarget:
			err = orch.SetTargetLanguage(msg.Language)
		case msgSwitch:
			orch.SwitchLanguages()
		case msgState:
			publisher.send(stateMessage{Type: msgState, State: orch.State()})
		default:
			publisher.send(jobs.Event{Type: jobs.EventTypeError, Message: "unknown message type: " + msg.Type})
		}
		if err != nil {
			publisher.send(jobs.Event{
				Type:      jobs.EventTypeError,
				Message:   err.Error(),
				ErrorKind: domain.KindOf(err, domain.ErrorKindUnsupportedLanguage),
			})
		}
	}
}

// writeLoop is the only goroutine writing to conn.
func (s *Server) writeLoop(conn *websocket.Conn, publisher *channelPublisher, logger *zap.SugaredLogger, done chan<- struct{}) {
	defer close(done)
	for msg := range publisher.out {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debugw("websocket write failed", "error", err)
			_ = conn.Close()
			for range publisher.out {
			}
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
