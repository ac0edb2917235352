package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"coderoomsgo/internal/protocol"
)

var (
	errUnknownAction = errors.New("unknown_action")

	validate = validator.New()
)

// ConnContext accompanies every dispatched frame.
type ConnContext struct {
	Conn   *clientConn
	Server *WsServer
}

// internal (untyped) handler signature. The bool is the handler's verdict;
// false means the action was valid but inapplicable (silent no-op). An error
// means the frame itself was malformed.
type rawHandler func(c *ConnContext, env protocol.Envelope) (bool, error)

// Router keeps a map[ActionType]handler, à-la gin.Engine.
type Router struct {
	mu       sync.RWMutex
	handlers map[protocol.ActionType]rawHandler
}

func NewRouter() *Router {
	return &Router{handlers: make(map[protocol.ActionType]rawHandler)}
}

// Register binds an action to a strongly-typed handler. Params are decoded
// into Req and validated before the handler runs; a shape mismatch rejects
// the frame without touching any state.
func Register[Req any](
	r *Router,
	t protocol.ActionType,
	h func(c *ConnContext, env protocol.Envelope, req Req) bool,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[t] = func(c *ConnContext, env protocol.Envelope) (bool, error) {
		var req Req
		if len(env.Params) > 0 {
			if err := json.Unmarshal(env.Params, &req); err != nil {
				return false, err
			}
		}
		if err := validate.Struct(&req); err != nil {
			return false, err
		}
		return h(c, env, req), nil
	}
}

// dispatch is called by the server's reader loop.
func (r *Router) dispatch(c *ConnContext, env protocol.Envelope) (bool, error) {
	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()
	if !ok {
		return false, errUnknownAction
	}
	return h(c, env)
}
