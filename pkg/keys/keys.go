// Package keys loads and generates the long-term key material each protocol
// role needs: a Schnorr keypair, optionally a Paillier keypair of its own
// (only the Tumbler ever decrypts), and every role's copy of the Tumbler's
// Paillier public key. Grounded on the teacher's examples/common/config.go
// JSON-file loading idiom (SecurePath path-traversal guard, os.ReadFile, a
// single json.Unmarshal into a plain-data struct) and pkg/mpc/types.go's
// KeyShare shape, generalized from TLS certificates to the scalar/Paillier
// byte fields spec.md's KeyBundle calls for.
package keys

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/paillier"
)

// SchnorrKeyPair is a party's long-term Schnorr signing key, sk, and its
// public counterpart pk = g^sk.
type SchnorrKeyPair struct {
	SK *curve.Scalar
	PK *curve.Point
}

// PaillierKeyPair is a party's own Paillier keys. Only the Tumbler role ever
// populates SK; Bob and Alice hold at most a PK (and in practice neither
// needs even that — they only ever encrypt/homomorphically-add under the
// Tumbler's public key, per spec.md §4.4).
type PaillierKeyPair struct {
	SK *paillier.SecretKey
	PK *paillier.PublicKey
}

// KeyBundle is the long-term key material loaded once at process startup
// and never rewritten, per spec.md §6 "Persisted state".
type KeyBundle struct {
	Role      string
	Schnorr   *SchnorrKeyPair
	Paillier  *PaillierKeyPair
	TumblerPK *paillier.PublicKey

	// ChannelPK is the combined 2-of-2 Schnorr public key the almost-
	// signature and final signature verify under: ChannelPK = pk_B + pk_T
	// (point addition), pre-established out of band the way a payment
	// channel's funding output key would be, and known identically by both
	// Bob and the Tumbler before a session starts. Alice never needs it.
	ChannelPK *curve.Point
}

// fileFormat is the on-disk JSON shape. Every big-integer field is the
// base64 encoding of its canonical big-endian bytes; this mirrors the
// teacher's plain-data ClusterConfig/PartyConfig structs, substituting
// byte-string fields for the TLS certificate/key file paths those structs
// hold, since no binary key-file format appears anywhere in the retrieved
// corpus.
type fileFormat struct {
	Role           string `json:"role"`
	SchnorrSK      string `json:"schnorr_sk,omitempty"`
	SchnorrPK      string `json:"schnorr_pk,omitempty"`
	PaillierN      string `json:"paillier_n,omitempty"`
	PaillierLambda string `json:"paillier_lambda,omitempty"`
	PaillierMu     string `json:"paillier_mu,omitempty"`
	TumblerN       string `json:"tumbler_paillier_n"`
	ChannelPK      string `json:"channel_pk,omitempty"`
}

// Load reads and parses a key file at path, following the teacher's
// SecurePath discipline: the resolved path must not escape the process's
// working directory.
func Load(path string) (KeyBundle, error) {
	absPath, err := securePath(path)
	if err != nil {
		return KeyBundle{}, fmt.Errorf("keys: secure path: %w", err)
	}
	data, err := os.ReadFile(absPath) // #nosec G304 -- absPath validated by securePath
	if err != nil {
		return KeyBundle{}, fmt.Errorf("keys: read file: %w", err)
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return KeyBundle{}, fmt.Errorf("keys: unmarshal JSON: %w", err)
	}
	return ff.toBundle()
}

// Save serializes a KeyBundle to path as JSON, used by key-generation
// tooling (not by the protocol roles themselves, which only ever load).
func Save(path string, kb KeyBundle) error {
	ff, err := kb.toFileFormat()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("keys: marshal JSON: %w", err)
	}
	absPath, err := securePath(path)
	if err != nil {
		return fmt.Errorf("keys: secure path: %w", err)
	}
	return os.WriteFile(absPath, data, 0o600)
}

func (ff fileFormat) toBundle() (KeyBundle, error) {
	if ff.TumblerN == "" {
		return KeyBundle{}, errors.New("keys: missing tumbler_paillier_n")
	}
	tumblerN, err := decode(ff.TumblerN)
	if err != nil {
		return KeyBundle{}, fmt.Errorf("keys: tumbler_paillier_n: %w", err)
	}
	kb := KeyBundle{
		Role:      ff.Role,
		TumblerPK: paillier.PublicKeyFromN(tumblerN),
	}

	if ff.SchnorrSK != "" || ff.SchnorrPK != "" {
		skb, err := decode(ff.SchnorrSK)
		if err != nil {
			return KeyBundle{}, fmt.Errorf("keys: schnorr_sk: %w", err)
		}
		sk, err := curve.NewScalarFromBytes(skb)
		if err != nil {
			return KeyBundle{}, fmt.Errorf("keys: schnorr_sk: %w", err)
		}
		kb.Schnorr = &SchnorrKeyPair{SK: sk, PK: curve.MulGenerator(sk)}
	}

	if ff.PaillierN != "" {
		nBytes, err := decode(ff.PaillierN)
		if err != nil {
			return KeyBundle{}, fmt.Errorf("keys: paillier_n: %w", err)
		}
		pk := paillier.PublicKeyFromN(nBytes)
		pp := &PaillierKeyPair{PK: pk}
		if ff.PaillierLambda != "" && ff.PaillierMu != "" {
			lambda, err := decode(ff.PaillierLambda)
			if err != nil {
				return KeyBundle{}, fmt.Errorf("keys: paillier_lambda: %w", err)
			}
			mu, err := decode(ff.PaillierMu)
			if err != nil {
				return KeyBundle{}, fmt.Errorf("keys: paillier_mu: %w", err)
			}
			sk, err := paillier.SecretKeyFromParts(pk, lambda, mu)
			if err != nil {
				return KeyBundle{}, fmt.Errorf("keys: secret key: %w", err)
			}
			pp.SK = sk
		}
		kb.Paillier = pp
	}

	if ff.ChannelPK != "" {
		b, err := decode(ff.ChannelPK)
		if err != nil {
			return KeyBundle{}, fmt.Errorf("keys: channel_pk: %w", err)
		}
		pk, err := curve.NewPointFromBytes(b)
		if err != nil {
			return KeyBundle{}, fmt.Errorf("keys: channel_pk: %w", err)
		}
		kb.ChannelPK = pk
	}

	return kb, nil
}

func (kb KeyBundle) toFileFormat() (fileFormat, error) {
	if kb.TumblerPK == nil {
		return fileFormat{}, errors.New("keys: bundle missing Tumbler Paillier public key")
	}
	ff := fileFormat{
		Role:     kb.Role,
		TumblerN: encode(kb.TumblerPK.N()),
	}
	if kb.Schnorr != nil {
		ff.SchnorrSK = encode(kb.Schnorr.SK.Bytes())
		ff.SchnorrPK = encode(kb.Schnorr.PK.Bytes())
	}
	if kb.Paillier != nil {
		ff.PaillierN = encode(kb.Paillier.PK.N())
		if kb.Paillier.SK != nil {
			lambda, mu := kb.Paillier.SK.Parts()
			ff.PaillierLambda = encode(lambda)
			ff.PaillierMu = encode(mu)
		}
	}
	if kb.ChannelPK != nil {
		ff.ChannelPK = encode(kb.ChannelPK.Bytes())
	}
	return ff, nil
}

func encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// securePath resolves path relative to the process's working directory and
// rejects any result that escapes it, matching the teacher's
// examples/common/config.go SecurePath guard against path traversal.
func securePath(path string) (string, error) {
	clean := filepath.Clean(path)
	absPath, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}

// GenerateBobBundle creates a fresh Bob key bundle against an existing
// Tumbler Paillier public key, for tests and key-provisioning tooling. The
// returned bundle's ChannelPK is left nil: it can only be computed once
// Bob's own Schnorr public key exists, via ChannelPK(bundle.Schnorr.PK,
// tumblerSchnorrPK), and must then be set identically on both Bob's and the
// Tumbler's provisioned bundles.
func GenerateBobBundle(tumblerPK *paillier.PublicKey) (KeyBundle, error) {
	sk, err := curve.RandomScalar()
	if err != nil {
		return KeyBundle{}, err
	}
	return KeyBundle{
		Role:      "bob",
		Schnorr:   &SchnorrKeyPair{SK: sk, PK: curve.MulGenerator(sk)},
		TumblerPK: tumblerPK,
	}, nil
}

// GenerateAliceBundle creates a fresh Alice key bundle; Alice never signs,
// so it carries no Schnorr keypair or channel key.
func GenerateAliceBundle(tumblerPK *paillier.PublicKey) KeyBundle {
	return KeyBundle{Role: "alice", TumblerPK: tumblerPK}
}

// GenerateTumblerBundle creates a fresh Tumbler key bundle, including the
// Paillier keypair whose public half every other role will load as
// TumblerPK. The caller supplies the combined channel public key once
// Bob's share is also known (see ChannelPK).
func GenerateTumblerBundle(paillierBits int) (KeyBundle, error) {
	sk, err := curve.RandomScalar()
	if err != nil {
		return KeyBundle{}, err
	}
	pk, psk, err := paillier.GenerateKeyPair(paillierBits)
	if err != nil {
		return KeyBundle{}, err
	}
	return KeyBundle{
		Role:      "tumbler",
		Schnorr:   &SchnorrKeyPair{SK: sk, PK: curve.MulGenerator(sk)},
		Paillier:  &PaillierKeyPair{SK: psk, PK: pk},
		TumblerPK: pk,
	}, nil
}

// ChannelPK computes the combined 2-of-2 Schnorr public key pk_B + pk_T
// from each party's individual Schnorr public key.
func ChannelPK(bobPK, tumblerPK *curve.Point) (*curve.Point, error) {
	return bobPK.Add(tumblerPK)
}
