package live

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/recera/synapse/pkg/graphview"
)

// LivePath is the websocket endpoint prefix; the session id follows it
const LivePath = "/synapse/live/"

// Recorder receives per-frame and per-session measurements
type Recorder interface {
	RecordFrame(host, session string, s *graphview.Session, d time.Duration)
	SessionOpened()
	SessionClosed(session string)
}

// GraphSource returns a fresh copy of the graph for a new session. Each
// session mutates its own nodes.
type GraphSource func() ([]*graphview.Node, []graphview.Connection)

// Options configures a Server
type Options struct {
	// Graph seeds each new session
	Graph GraphSource

	// View is the base session configuration; host callbacks are
	// overridden by the server
	View graphview.Options

	// Interval between frames; zero uses scheduler.DefaultInterval
	Interval time.Duration

	// Recorder is optional
	Recorder Recorder

	// CheckOrigin overrides the upgrader origin check; nil allows all
	CheckOrigin func(r *http.Request) bool
}

// Server handles websocket connections, one graph view per session
type Server struct {
	upgrader websocket.Upgrader
	opts     Options
	sessions map[string]*Session
	mu       sync.RWMutex
}

// Session represents a live connection session
type Session struct {
	ID        string
	conn      *websocket.Conn
	bridge    *bridge
	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewServer creates a new live server
func NewServer(opts Options) *Server {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	if opts.Graph == nil {
		opts.Graph = func() ([]*graphview.Node, []graphview.Connection) { return nil, nil }
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Handler returns a mux serving the canvas client at / and the websocket
// endpoint under LivePath
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(LivePath, s.HandleWebSocket)
	mux.HandleFunc("/", s.serveIndex)
	return mux
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

// HandleWebSocket handles the websocket upgrade and runs the session. An
// empty session id gets a fresh one.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, LivePath), "/")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live Server] Failed to upgrade connection: %v", err)
		return
	}

	session := s.createSession(sessionID, conn)
	go s.run(session)
}

// createSession registers a session, closing any connection that held the
// same id
func (s *Server) createSession(id string, conn *websocket.Conn) *Session {
	session := &Session{
		ID:        id,
		conn:      conn,
		sendChan:  make(chan []byte, 64),
		closeChan: make(chan struct{}),
	}
	nodes, conns := s.opts.Graph()
	session.bridge = newBridge(id, nodes, conns, s.opts, session.enqueue)

	s.mu.Lock()
	old := s.sessions[id]
	s.sessions[id] = session
	s.mu.Unlock()

	if old != nil {
		log.Printf("[Live Server] Session %s reconnected, closing previous connection", id)
		old.close()
	}
	return session
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// removeSession removes a session unless it has been replaced
func (s *Server) removeSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID] == session {
		delete(s.sessions, session.ID)
	}
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast runs fn against every session's view on that session's loop.
// Returns the number of sessions fn was queued for.
func (s *Server) Broadcast(fn func(*graphview.Session)) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, session := range s.sessions {
		b := session.bridge
		if b.loop.Post(func() { fn(b.view) }) {
			n++
		}
	}
	return n
}

// Close disconnects every session
func (s *Server) Close() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()
	for _, session := range sessions {
		session.close()
	}
}

// run manages the websocket connection for a session
func (s *Server) run(session *Session) {
	if rec := s.opts.Recorder; rec != nil {
		rec.SessionOpened()
		defer rec.SessionClosed(session.ID)
	}
	defer s.removeSession(session)
	defer session.close()

	go session.writer()
	session.sendHello(s.opts.View.Palette)
	log.Printf("[Live Session %s] Connected", session.ID)

	session.bridge.start()

	session.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	session.conn.SetPongHandler(func(string) error {
		session.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
		return nil
	})

	for {
		messageType, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Live Session %s] Unexpected close: %v", session.ID, err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("[Live Session %s] Failed to decode event: %v", session.ID, err)
			continue
		}
		session.bridge.post(event)
	}
	log.Printf("[Live Session %s] Disconnected", session.ID)
}

// close stops the loop and the writer and closes the connection
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.bridge.stop()
		close(s.closeChan)
		s.conn.Close()
	})
}

// enqueue hands a message to the writer without blocking the loop
func (s *Session) enqueue(data []byte) bool {
	select {
	case <-s.closeChan:
		return false
	default:
	}
	select {
	case s.sendChan <- data:
		return true
	default:
		return false
	}
}

func (s *Session) sendHello(p graphview.Palette) {
	bg := p.Background
	if bg == "" {
		bg = graphview.DefaultPalette().Background
	}
	data, err := json.Marshal(Message{Type: MessageHello, Session: s.ID, Background: bg})
	if err != nil {
		return
	}
	s.enqueue(data)
}

// writer handles writing messages to the websocket
func (s *Session) writer() {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Live Session %s] Failed to write message: %v", s.ID, err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.closeChan:
			s.conn.SetWriteDeadline(time.Now().Add(time.Second))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
