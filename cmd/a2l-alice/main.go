// Command a2l-alice runs Alice's side of the puzzle-solving exchange: it
// services one puzzle_share round trip from Bob, solves the puzzle, and
// delivers puzzle_solution_share.
//
// Per SPEC_FULL.md §4.8', the Tumbler-Alice promise/solve sub-protocol that
// would normally produce alpha_hat is out of scope; this command stands in
// for it with a direct call to tumbler.PuzzleSolve, so it additionally
// loads the Tumbler's own key bundle (including its Paillier secret key) to
// make that call. A production deployment would replace this with a real
// network round trip to a Tumbler process; here Alice simply holds the key
// material Tumbler would use to answer it.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/a2lprotocol/a2l-go/internal/logging"
	"github.com/a2lprotocol/a2l-go/pkg/alice"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/keys"
	"github.com/a2lprotocol/a2l-go/pkg/paillier"
	"github.com/a2lprotocol/a2l-go/pkg/session"
	"github.com/a2lprotocol/a2l-go/pkg/tumbler"
)

func main() {
	var (
		keyPath        = flag.String("keys", "alice.json", "path to Alice's key bundle")
		tumblerKeyPath = flag.String("tumbler-keys", "tumbler.json", "path to the Tumbler's key bundle (for PuzzleSolve)")
		listen         = flag.String("listen", "localhost:9002", "address Alice listens on for Bob's puzzle_share")
		bobAddr        = flag.String("bob", "localhost:9003", "BOB_ENDPOINT to deliver the solution to")
		txHex          = flag.String("tx", "", "hex-encoded transaction (unused by Alice but kept for session parity)")
	)
	flag.Parse()

	tx, err := hex.DecodeString(*txHex)
	if err != nil {
		log.Fatalf("decode --tx: %v", err)
	}

	kb, err := keys.Load(*keyPath)
	if err != nil {
		log.Fatalf("load key bundle: %v", err)
	}

	tumblerKB, err := keys.Load(*tumblerKeyPath)
	if err != nil {
		log.Fatalf("load tumbler key bundle: %v", err)
	}
	if tumblerKB.Paillier == nil || tumblerKB.Paillier.SK == nil {
		log.Fatal("tumbler key bundle missing Paillier secret key")
	}

	s := session.NewAliceSession(kb, tx)
	logger := logging.New(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	solve := func(ct *paillier.Ciphertext) (*curve.Scalar, error) {
		return tumbler.PuzzleSolve(tumblerKB.Paillier.SK, ct)
	}

	if err := alice.Run(context.Background(), s, *listen, *bobAddr, solve, logger); err != nil {
		logger.Error(context.Background(), "session failed", "error", err)
		os.Exit(1)
	}
	os.Exit(0)
}
