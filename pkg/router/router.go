// Package router implements the type-keyed dispatch table every role's FSM
// loop uses to turn an inbound wire.Frame into a call against its session
// state (C7): a static map from the recognized message type strings to a
// handler, modeled per spec.md §9's design notes as a closed Go dispatch
// table rather than a runtime-extensible registry, so an unrecognized type
// string is a parse-time-shaped error (a2lerr.ErrUnknownMessage), not a
// silent no-op.
package router

import (
	"context"
	"fmt"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/transport"
	"github.com/a2lprotocol/a2l-go/pkg/wire"
)

// Handler processes one inbound message for session state S: it consumes
// data, may send exactly one outbound message over sock, and may set at
// most one completion flag on s, per spec.md §4.7.
type Handler[S any] func(ctx context.Context, s S, sock *transport.Socket, data []byte) error

// Table is the static type-string-to-handler map for one role.
type Table[S any] map[string]Handler[S]

// Dispatch looks up f.Type in table and runs its handler against s and
// sock. An unrecognized type is a fatal session error per spec.md §4.7.
func Dispatch[S any](ctx context.Context, table Table[S], s S, sock *transport.Socket, f wire.Frame) error {
	h, ok := table[f.Type]
	if !ok {
		return a2lerr.Wrap("router.Dispatch", a2lerr.ErrUnknownMessage, fmt.Errorf("message type %q", f.Type))
	}
	return h(ctx, s, sock, f.Data)
}
