package realtime

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	socketio "github.com/googollee/go-socket.io"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/service"
)

const (
	namespace = "/"

	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
	eventError     = "error"

	sessionCookieName = "jwt_session"
)

// TokenVerifier turns a session token into the user's claims.
type TokenVerifier func(token string) (service.UserCredentialClaims, error)

// Server pushes room events to socket.io clients. A client subscribes to a
// room by emitting joinRoom with the room id and gets every global event
// without subscribing.
type Server struct {
	Verify TokenVerifier // optional, connections are anonymous without it
	io     *socketio.Server
	logger *logrus.Entry
}

type connCtx struct {
	userName string
	room     string
}

func (s *Server) Start() {
	s.logger = logrus.WithField("from", "realtime")
	s.io = socketio.NewServer(nil)

	s.io.OnConnect(namespace, func(c socketio.Conn) error {
		ctx := &connCtx{userName: "anonymous"}
		if s.Verify != nil {
			claims, err := s.Verify(connToken(c))
			if err != nil {
				s.logger.Warnf("socket %s rejected, %v", c.ID(), err)
				return err
			}
			ctx.userName = claims.UserName
		}
		c.SetContext(ctx)
		s.logger.Debugf("socket %s connected as %s", c.ID(), ctx.userName)
		return nil
	})

	s.io.OnEvent(namespace, EventJoinRoom, func(c socketio.Conn, roomID string) map[string]any {
		id, err := uuid.Parse(roomID)
		if err != nil {
			c.Emit(eventError, map[string]any{"code": "invalid_room", "message": "invalid room id"})
			return map[string]any{"error": "invalid room id"}
		}
		ctx := contextOf(c)
		// one room per connection
		if ctx.room != "" && ctx.room != id.String() {
			c.Leave(ctx.room)
		}
		ctx.room = id.String()
		c.Join(ctx.room)
		s.logger.Debugf("%s subscribed to room %s", ctx.userName, ctx.room)
		return map[string]any{"ok": true}
	})

	s.io.OnEvent(namespace, EventLeaveRoom, func(c socketio.Conn, roomID string) map[string]any {
		ctx := contextOf(c)
		c.Leave(roomID)
		if ctx.room == roomID {
			ctx.room = ""
		}
		return map[string]any{"ok": true}
	})

	s.io.OnError(namespace, func(c socketio.Conn, e error) {
		if c == nil {
			s.logger.Errorf("socket error, %v", e)
			return
		}
		s.logger.Errorf("socket %s error, %v", c.ID(), e)
	})

	s.io.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		s.logger.Debugf("socket %s disconnected, %s", c.ID(), reason)
	})
}

// Serve runs the socket.io event loop until Close.
func (s *Server) Serve() {
	if err := s.io.Serve(); err != nil {
		s.logger.Errorf("socket server stopped, %v", err)
	}
}

func (s *Server) Close() error {
	return s.io.Close()
}

func (s *Server) Handler() http.Handler {
	return s.io
}

func (s *Server) Publish(topic string, event string, payload any) {
	if topic == events.TopicGlobal {
		s.io.BroadcastToNamespace(namespace, event, payload)
		return
	}
	s.io.BroadcastToRoom(namespace, topic, event, payload)
}

func contextOf(c socketio.Conn) *connCtx {
	if ctx, ok := c.Context().(*connCtx); ok {
		return ctx
	}
	ctx := &connCtx{userName: "anonymous"}
	c.SetContext(ctx)
	return ctx
}

// connToken reads the session from the handshake: a token query parameter,
// then a bearer header, then the session cookie.
func connToken(c socketio.Conn) string {
	u := c.URL()
	if token := u.Query().Get("token"); token != "" {
		return token
	}
	header := c.RemoteHeader()
	if bearer, ok := strings.CutPrefix(header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	req := http.Request{Header: header}
	if cookie, err := req.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
