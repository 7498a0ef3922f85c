// Package transport implements the request/reply socket lifecycle each
// protocol role uses (C9): Bob dials the Tumbler and, separately, dials
// Alice for the puzzle-share leg (REQ role in both cases), then binds a
// listener at BOB_ENDPOINT to receive Alice's solution (REP role). Framing
// is pkg/wire's {type, data} codec over net.Conn, grounded on the teacher's
// examples/tlsnet/transport.go writeFrame/readFrame length-prefix idiom,
// generalized to the one-message-in-flight, non-blocking-poll model
// spec.md §5 requires (no background reader goroutine, no mTLS).
package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/wire"
)

// DefaultPollInterval is the deadline TryReceive waits for each poll before
// reporting "no data", spec.md §5's non-blocking-receive case.
const DefaultPollInterval = 20 * time.Millisecond

// Socket is one endpoint's view of a request/reply connection. It owns
// exactly one net.Conn; spec.md §5 assigns session state sole ownership of
// whichever Socket is currently bound, so Close is safe to call more than
// once and from any exit path (success, error, or abort).
type Socket struct {
	conn      net.Conn
	closeOnce sync.Once
	closeErr  error
}

func newSocket(conn net.Conn) *Socket { return &Socket{conn: conn} }

// Dial opens a REQ-role socket to addr. Bob is always the client toward the
// Tumbler, and toward Alice during the puzzle-share leg (spec.md §6).
func Dial(ctx context.Context, addr string) (*Socket, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, a2lerr.Wrap("transport.Dial", a2lerr.ErrTransport, err)
	}
	return newSocket(conn), nil
}

// Listener accepts inbound REP-role connections, matching Bob's BOB_ENDPOINT
// role during the solution phase (spec.md §6).
type Listener struct {
	ln net.Listener
}

// Listen binds a REP-role listener at addr.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, a2lerr.Wrap("transport.Listen", a2lerr.ErrTransport, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept blocks for a single inbound connection, or until ctx is done.
func (l *Listener) Accept(ctx context.Context) (*Socket, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := l.ln.Accept()
		ch <- result{conn, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, a2lerr.Wrap("transport.Accept", a2lerr.ErrTransport, r.err)
		}
		return newSocket(r.conn), nil
	case <-ctx.Done():
		return nil, a2lerr.Wrap("transport.Accept", a2lerr.ErrTransport, ctx.Err())
	}
}

// Close releases the listener's underlying socket.
func (l *Listener) Close() error { return l.ln.Close() }

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Send serializes and writes one frame. Per spec.md §5, exactly one message
// is ever in flight on a socket at a time; callers are expected not to call
// Send concurrently with another Send or TryReceive on the same Socket.
func (s *Socket) Send(f wire.Frame) error {
	return wire.WriteFrame(s.conn, f)
}

// pollReader tracks whether the most recent Read failed because the read
// deadline elapsed, distinguishing spec.md §5's "no data yet" case from a
// genuine transport failure without needing wire.ReadFrame to know
// anything about net.Error.
type pollReader struct {
	r        net.Conn
	timedOut bool
}

func (p *pollReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			p.timedOut = true
		}
	}
	return n, err
}

// TryReceive performs one non-blocking poll for an inbound frame: a
// deadline that elapses with no bytes read returns (Frame{}, false, nil),
// the spec's "no data" case, not an error; the FSM loop simply re-polls.
// Any other read failure is fatal and returned as a2lerr.ErrTransport.
//
// This assumes each frame is written and read as one atomic unit relative
// to the poll interval (true for the synchronous one-message-in-flight REQ/
// REP exchanges this protocol uses); a timeout landing mid-frame is treated
// like a full timeout rather than a partial-frame transport error, which is
// never observed in practice for the request/reply pattern this package is
// built for.
func (s *Socket) TryReceive(pollTimeout time.Duration) (wire.Frame, bool, error) {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollInterval
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(pollTimeout)); err != nil {
		return wire.Frame{}, false, a2lerr.Wrap("transport.TryReceive", a2lerr.ErrTransport, err)
	}

	pr := &pollReader{r: s.conn}
	f, err := wire.ReadFrame(pr)
	if err != nil {
		if pr.timedOut {
			return wire.Frame{}, false, nil
		}
		return wire.Frame{}, false, err
	}
	_ = s.conn.SetReadDeadline(time.Time{})
	return f, true, nil
}

// Close is idempotent: repeated or racing calls (e.g. from both the FSM's
// normal exit path and a deferred abort handler) all observe the same
// result, addressing spec.md §9's REP-socket-closed-on-abort open question
// by making "close whichever socket is currently bound" always safe to do
// unconditionally.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// Pipe returns two connected in-process sockets for tests; this package's
// own tests use it, while the E1-E5 end-to-end tests in pkg/bob run over
// TCP loopback via Dial/Listen instead. It is grounded on the
// same Socket type the TCP path uses rather than a parallel channel-based
// implementation (as the teacher's pkg/cbmpc/mocknet builds for its
// many-peer, many-sequence-number model): this protocol's request/reply
// exchanges are strictly one-message-in-flight per pair, which is exactly
// what net.Pipe's synchronous, deadline-aware net.Conn already provides.
func Pipe() (a, b *Socket) {
	c1, c2 := net.Pipe()
	return newSocket(c1), newSocket(c2)
}
