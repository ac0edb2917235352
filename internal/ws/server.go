package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coderoomsgo/internal/protocol"
	"coderoomsgo/internal/services/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dev-only
	},
}

type WsServer struct {
	router  *Router
	reg     *registry
	roomSvc room.IRoomService

	sweepEvery time.Duration
}

func NewWsServer(roomSvc room.IRoomService, sweepEvery time.Duration) *WsServer {
	srv := &WsServer{
		router:     NewRouter(),
		reg:        newRegistry(),
		roomSvc:    roomSvc,
		sweepEvery: sweepEvery,
	}
	srv.registerHandlers() // ← all WS actions configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	raw, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}

	conn := newClientConn(raw)
	s.reg.add(conn)

	go conn.writePump()
	go s.reader(conn)
}

// RunSweeper periodically pings every connection and forces unresponsive ones
// through the same leave path a graceful disconnect uses.
func (s *WsServer) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range s.reg.snapshot() {
				if !c.markStale() {
					s.drop(c)
					continue
				}
				c.ping()
			}
		}
	}
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(s.router, protocol.Create,
		func(c *ConnContext, _ protocol.Envelope, req protocol.CreateParams) bool {
			userID := req.UserInfo.UserID
			if _, ok := s.roomSvc.CreateRoom(c.Conn, userID); !ok {
				return false
			}
			c.Conn.setUser(userID)
			return true
		})

	Register(s.router, protocol.Join,
		func(c *ConnContext, _ protocol.Envelope, req protocol.JoinParams) bool {
			userID := req.UserInfo.UserID
			if !s.roomSvc.JoinRoom(c.Conn, userID, req.RoomID) {
				return false
			}
			c.Conn.setUser(userID)
			return true
		})

	Register(s.router, protocol.Leave,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Leave(c.Conn.user())
		})

	Register(s.router, protocol.ChatMessage,
		func(c *ConnContext, env protocol.Envelope, req protocol.ChatParams) bool {
			return s.roomSvc.Chat(c.Conn.user(), req.Message, env.TS)
		})

	Register(s.router, protocol.Ready,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Ready(c.Conn.user())
		})

	Register(s.router, protocol.Unready,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Unready(c.Conn.user())
		})

	Register(s.router, protocol.Finished,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Finished(c.Conn.user())
		})

	Register(s.router, protocol.Forfeit,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Forfeit(c.Conn.user())
		})

	Register(s.router, protocol.Hint,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.ViewedHint(c.Conn.user())
		})

	Register(s.router, protocol.Discussion,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.ViewedDiscussion(c.Conn.user())
		})

	Register(s.router, protocol.Solutions,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.ViewedSolutions(c.Conn.user())
		})

	Register(s.router, protocol.Submit,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.Submitted(c.Conn.user())
		})

	Register(s.router, protocol.Failed,
		func(c *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
			return s.roomSvc.SubmitFailed(c.Conn.user())
		})

	// Action, StartGame, EndGame and UpdateUserState are server-initiated;
	// a client sending them is a protocol error.
}

func (s *WsServer) reader(c *clientConn) {
	defer s.drop(c)

	c.raw.SetReadLimit(maxMessageSize)
	c.raw.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	cc := &ConnContext{Conn: c, Server: s}

	for {
		_, data, err := c.raw.ReadMessage()
		if err != nil {
			return // client closed or errored
		}
		c.touch()

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			zap.L().Warn("ws.bad_frame", zap.Error(err))
			continue
		}

		ok, err := s.router.dispatch(cc, env)
		if err != nil {
			zap.L().Warn("ws.protocol_error",
				zap.Stringer("type", env.Type),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			// Valid frame, inapplicable state. The contract is a silent
			// no-op; clients resync from UpdateUserState broadcasts.
			zap.L().Debug("ws.rejected",
				zap.Stringer("type", env.Type),
				zap.String("user", c.user()),
			)
		}
	}
}

// drop tears a connection down and releases its room membership. Safe to call
// from both the reader and the sweeper.
func (s *WsServer) drop(c *clientConn) {
	s.reg.remove(c)
	if userID := c.user(); userID != "" {
		s.roomSvc.Leave(userID)
	}
	c.close()
}
