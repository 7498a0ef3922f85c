// Command a2l-tumbler runs the Tumbler's side of the promise phase: a REP
// socket at TUMBLER_ENDPOINT that services exactly one Bob session's
// promise_init/promise_sign/promise_end exchange and then exits.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/a2lprotocol/a2l-go/internal/logging"
	"github.com/a2lprotocol/a2l-go/pkg/keys"
	"github.com/a2lprotocol/a2l-go/pkg/session"
	"github.com/a2lprotocol/a2l-go/pkg/tumbler"
)

func main() {
	var (
		keyPath = flag.String("keys", "tumbler.json", "path to the Tumbler's key bundle")
		listen  = flag.String("listen", "localhost:9001", "TUMBLER_ENDPOINT to listen on")
		txHex   = flag.String("tx", "", "hex-encoded transaction to be signed (must match Bob's)")
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
	if kb.Schnorr == nil || kb.Paillier == nil || kb.Paillier.SK == nil {
		log.Fatal("key bundle missing Schnorr keypair or Paillier secret key")
	}

	s := session.NewTumblerSession(kb, tx)
	logger := logging.New(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := tumbler.RunPromisePhase(context.Background(), s, *listen, logger); err != nil {
		logger.Error(context.Background(), "promise phase failed", "error", err)
		os.Exit(1)
	}
	os.Exit(0)
}
