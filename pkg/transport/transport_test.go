package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/a2lprotocol/a2l-go/pkg/transport"
	"github.com/a2lprotocol/a2l-go/pkg/wire"
)

func TestPipeSendReceive(t *testing.T) {
	a, b := transport.Pipe()
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	done := make(chan error, 1)
	go func() {
		done <- a.Send(wire.Frame{Type: "ping", Data: []byte("payload")})
	}()

	var f wire.Frame
	var ok bool
	var err error
	for i := 0; i < 100; i++ {
		f, ok, err = b.TryReceive(10 * time.Millisecond)
		if err != nil {
			t.Fatalf("TryReceive: %v", err)
		}
		if ok {
			break
		}
	}
	if !ok {
		t.Fatal("never received frame")
	}
	if f.Type != "ping" || string(f.Data) != "payload" {
		t.Fatalf("got frame %+v", f)
	}
	if sendErr := <-done; sendErr != nil {
		t.Fatalf("Send: %v", sendErr)
	}
}

func TestTryReceiveTimesOutWithoutData(t *testing.T) {
	a, b := transport.Pipe()
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	_, ok, err := b.TryReceive(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("TryReceive: %v", err)
	}
	if ok {
		t.Fatal("expected no frame to be ready")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a, _ := transport.Pipe()
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDialListenAccept(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	addr := ln.Addr().String()
	acceptErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sock, err := ln.Accept(ctx)
		if err == nil {
			_ = sock.Close()
		}
		acceptErr <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sock, err := transport.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer func() { _ = sock.Close() }()

	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept: %v", err)
	}
}
