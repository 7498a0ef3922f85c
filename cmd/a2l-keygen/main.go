// Command a2l-keygen provisions a matching set of key bundles for Bob, the
// Tumbler, and Alice: it generates the Tumbler's Schnorr and Paillier
// keypairs, Bob's Schnorr keypair, derives the combined channel public key
// ChannelPK = pk_B + pk_T, and writes all three files. Grounded on the
// teacher's examples/tlsnet/cmd/gen-certs/main.go certificate-generation
// entrypoint shape.
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/a2lprotocol/a2l-go/pkg/keys"
)

func main() {
	var (
		outDir       = flag.String("output", ".", "directory to write bob.json, tumbler.json, alice.json")
		paillierBits = flag.Int("paillier-bits", 2048, "Paillier modulus bit length for the Tumbler's keypair")
	)
	flag.Parse()

	tumblerKB, err := keys.GenerateTumblerBundle(*paillierBits)
	if err != nil {
		log.Fatalf("generate tumbler bundle: %v", err)
	}

	bobKB, err := keys.GenerateBobBundle(tumblerKB.Paillier.PK)
	if err != nil {
		log.Fatalf("generate bob bundle: %v", err)
	}

	channelPK, err := keys.ChannelPK(bobKB.Schnorr.PK, tumblerKB.Schnorr.PK)
	if err != nil {
		log.Fatalf("compute channel public key: %v", err)
	}
	bobKB.ChannelPK = channelPK
	tumblerKB.ChannelPK = channelPK

	aliceKB := keys.GenerateAliceBundle(tumblerKB.Paillier.PK)

	if err := keys.Save(filepath.Join(*outDir, "tumbler.json"), tumblerKB); err != nil {
		log.Fatalf("save tumbler.json: %v", err)
	}
	if err := keys.Save(filepath.Join(*outDir, "bob.json"), bobKB); err != nil {
		log.Fatalf("save bob.json: %v", err)
	}
	if err := keys.Save(filepath.Join(*outDir, "alice.json"), aliceKB); err != nil {
		log.Fatalf("save alice.json: %v", err)
	}

	log.Printf("wrote %s/{tumbler,bob,alice}.json", *outDir)
}
