// Package curve provides secp256k1 scalar and point arithmetic for the A2L
// protocol packages (pkg/zkdl, pkg/commitment, pkg/schnorrcore, pkg/wire,
// pkg/keys, pkg/session, pkg/bob, pkg/tumbler, pkg/alice).
package curve
