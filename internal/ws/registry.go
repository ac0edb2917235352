package ws

import "sync"

// registry tracks every live connection for the liveness sweep.
type registry struct {
	mu    sync.Mutex
	conns map[*clientConn]struct{}
}

func newRegistry() *registry {
	return &registry{conns: make(map[*clientConn]struct{})}
}

func (g *registry) add(c *clientConn) {
	g.mu.Lock()
	g.conns[c] = struct{}{}
	g.mu.Unlock()
}

func (g *registry) remove(c *clientConn) {
	g.mu.Lock()
	delete(g.conns, c)
	g.mu.Unlock()
}

// snapshot copies the conn set so sweep I/O happens outside the lock.
func (g *registry) snapshot() []*clientConn {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*clientConn, 0, len(g.conns))
	for c := range g.conns {
		out = append(out, c)
	}
	return out
}
