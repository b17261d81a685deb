package net

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"OverlayEditor/internal/document"
	"OverlayEditor/internal/drag"
	"OverlayEditor/internal/editor"
	"OverlayEditor/internal/layer"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Peer is one connected browser surface and the editor session it drives.
type Peer struct {
	ID      string
	Conn    *websocket.Conn
	Session *editor.Session

	geomMu  sync.Mutex
	size    drag.Size
	mounted bool
}

// Bounds reports the container size most recently sent by the browser.
func (p *Peer) Bounds() (drag.Size, bool) {
	p.geomMu.Lock()
	defer p.geomMu.Unlock()
	return p.size, p.mounted
}

func (p *Peer) resize(w, h float64) {
	p.geomMu.Lock()
	defer p.geomMu.Unlock()
	p.size = drag.Size{Width: w, Height: h}
	p.mounted = w > 0 && h > 0
}

// SessionManager tracks the live peers.
type SessionManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		peers: make(map[string]*Peer),
	}
}

func (sm *SessionManager) Add(p *Peer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.peers[p.ID] = p
	log.Printf("[WS] Surface %s connected from %s", p.ID, p.Conn.RemoteAddr())
}

func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.peers, id)
	log.Printf("[WS] Surface %s disconnected", id)
}

func (sm *SessionManager) Get(id string) (*Peer, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	p, ok := sm.peers[id]
	return p, ok
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.peers)
}

// Message types sent by the browser surface.
const (
	MsgPress     = "press"
	MsgMove      = "move"
	MsgRelease   = "release"
	MsgResize    = "resize"
	MsgAdd       = "add"
	MsgUpdate    = "update"
	MsgDelete    = "delete"
	MsgDuplicate = "duplicate"
	MsgSelect    = "select"
	MsgMoveLayer = "move_layer"
	MsgExport    = "export"
	MsgImport    = "import"
	MsgSave      = "save"
	MsgPreview   = "preview"
	MsgClose     = "close"
)

// Reply types sent to the browser surface.
const (
	ReplySnapshot = "snapshot"
	ReplyDocument = "document"
	ReplyError    = "error"
)

const ImportFailedMessage = document.ImportFailedMessage

// Message is an input event from the browser. Pointer coordinates are
// container-relative.
type Message struct {
	Type     string          `json:"type"`
	ID       layer.ID        `json:"id,omitempty"`
	X        float64         `json:"x,omitempty"`
	Y        float64         `json:"y,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Index    int             `json:"index,omitempty"`
	Patch    *layer.Patch    `json:"patch,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
	On       bool            `json:"on,omitempty"`
}

// Snapshot is the full layer state pushed after every change.
type Snapshot struct {
	Type     string            `json:"type"`
	Session  string            `json:"session"`
	Layers   []json.RawMessage `json:"layers"`
	Selected layer.ID          `json:"selected"`
	Version  uint64            `json:"version"`
	Preview  bool              `json:"preview"`
}

// DocumentReply carries an exported design.
type DocumentReply struct {
	Type     string          `json:"type"`
	FileName string          `json:"fileName"`
	Document json.RawMessage `json:"document"`
}

// ErrorReply reports a recoverable failure to the user.
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server accepts browser surfaces over WebSocket. Every connection gets its
// own editor session; nothing is shared between connections.
type Server struct {
	opts     editor.Options
	upgrader websocket.Upgrader
	sessions *SessionManager
}

// NewServer creates a server whose sessions are built from opts.
func NewServer(opts editor.Options) *Server {
	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: NewSessionManager(),
	}
}

func (s *Server) Sessions() *SessionManager { return s.sessions }

// Handler returns a mux serving the surface endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	peer := &Peer{ID: uuid.NewString(), Conn: conn}
	peer.Session = editor.New(s.opts)
	peer.Session.AttachGeometry(peer)
	peer.Session.Open()

	s.sessions.Add(peer)
	defer s.sessions.Remove(peer.ID)
	defer peer.Session.Close()

	if err := s.sendSnapshot(peer); err != nil {
		log.Printf("[WS] Initial snapshot to %s failed: %v", peer.ID, err)
		return
	}

	// Messages are handled strictly in arrival order on this goroutine,
	// which is also the only writer on the connection.
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WS] Read from %s: %v", peer.ID, err)
			}
			return
		}
		version := peer.Session.Store().Version()
		preview := peer.Session.Preview()

		reply, done := s.handle(peer, msg)
		if reply != nil {
			if err := conn.WriteJSON(reply); err != nil {
				log.Printf("[WS] Write to %s: %v", peer.ID, err)
				return
			}
		}
		if done {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "editor closed"))
			return
		}
		if peer.Session.Store().Version() != version || peer.Session.Preview() != preview {
			if err := s.sendSnapshot(peer); err != nil {
				log.Printf("[WS] Snapshot to %s failed: %v", peer.ID, err)
				return
			}
		}
	}
}

// handle applies one message. It returns an optional direct reply and
// whether the connection should close.
func (s *Server) handle(p *Peer, msg Message) (reply any, done bool) {
	sess := p.Session
	store := sess.Store()
	pt := layer.Point{X: msg.X, Y: msg.Y}

	switch msg.Type {
	case MsgResize:
		p.resize(msg.Width, msg.Height)
	case MsgPress:
		sess.Drag().Press(msg.ID, pt)
	case MsgMove:
		sess.Hub().Move(pt)
	case MsgRelease:
		sess.Hub().Release()
	case MsgAdd:
		store.Add()
	case MsgUpdate:
		if msg.Patch != nil {
			store.Update(msg.ID, *msg.Patch)
		}
	case MsgDelete:
		store.Delete(msg.ID)
	case MsgDuplicate:
		store.Duplicate(msg.ID)
	case MsgSelect:
		store.Select(msg.ID)
	case MsgMoveLayer:
		store.Move(msg.ID, msg.Index)
	case MsgPreview:
		sess.SetPreview(msg.On)
	case MsgExport:
		data, err := sess.ExportBytes()
		if err != nil {
			log.Printf("[WS] Export for %s failed: %v", p.ID, err)
			return ErrorReply{Type: ReplyError, Message: "Failed to export design."}, false
		}
		return DocumentReply{Type: ReplyDocument, FileName: document.FileName, Document: data}, false
	case MsgImport:
		if err := sess.ImportBytes(documentBytes(msg.Document)); err != nil {
			return ErrorReply{Type: ReplyError, Message: ImportFailedMessage}, false
		}
	case MsgSave:
		sess.Save()
	case MsgClose:
		sess.Close()
		return nil, true
	default:
		log.Printf("[WS] Unknown message type %q from %s", msg.Type, p.ID)
		return ErrorReply{Type: ReplyError, Message: "unknown message type " + msg.Type}, false
	}
	return nil, false
}

func (s *Server) sendSnapshot(p *Peer) error {
	snap := p.Session.Store().Snapshot()
	out := Snapshot{
		Type:     ReplySnapshot,
		Session:  p.ID,
		Layers:   make([]json.RawMessage, 0, len(snap.Layers)),
		Selected: snap.Selected,
		Version:  snap.Version,
		Preview:  p.Session.Preview(),
	}
	for _, l := range snap.Layers {
		data, err := l.MarshalLive()
		if err != nil {
			return err
		}
		out.Layers = append(out.Layers, data)
	}
	return p.Conn.WriteJSON(out)
}

// documentBytes accepts the design either inline as a JSON object or as the
// raw file text wrapped in a JSON string.
func documentBytes(raw json.RawMessage) []byte {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return []byte(text)
	}
	return raw
}
