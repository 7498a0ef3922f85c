// Command a2l-bob runs Bob's side of the A2L tumbler protocol: it loads
// Bob's key bundle, drives the three-phase promise/puzzle-share/solution
// FSM against the configured Tumbler and Alice endpoints, and reports the
// final signature's verification outcome via its exit code.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/a2lprotocol/a2l-go/internal/logging"
	"github.com/a2lprotocol/a2l-go/pkg/bob"
	"github.com/a2lprotocol/a2l-go/pkg/keys"
	"github.com/a2lprotocol/a2l-go/pkg/session"
)

func main() {
	var (
		keyPath     = flag.String("keys", "bob.json", "path to Bob's key bundle")
		tumblerAddr = flag.String("tumbler", "localhost:9001", "Tumbler's promise-phase endpoint")
		aliceAddr   = flag.String("alice", "localhost:9002", "Alice's puzzle-share endpoint")
		bobAddr     = flag.String("listen", "localhost:9003", "address Bob listens on for Alice's solution")
		txHex       = flag.String("tx", "", "hex-encoded transaction to be signed (required)")
	)
	flag.Parse()

	if *txHex == "" {
		log.Fatal("--tx flag is required")
	}
	tx, err := hex.DecodeString(*txHex)
	if err != nil {
		log.Fatalf("decode --tx: %v", err)
	}

	kb, err := keys.Load(*keyPath)
	if err != nil {
		log.Fatalf("load key bundle: %v", err)
	}
	if kb.Schnorr == nil || kb.ChannelPK == nil {
		log.Fatal("key bundle missing Schnorr keypair or channel public key")
	}

	s := session.NewBobSession(kb, tx)
	ep := bob.Endpoints{Tumbler: *tumblerAddr, Alice: *aliceAddr, Bob: *bobAddr}
	logger := logging.New(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := bob.Run(context.Background(), s, ep, logger); err != nil {
		logger.Error(context.Background(), "session failed", "error", err)
		os.Exit(1)
	}
	os.Exit(0)
}
