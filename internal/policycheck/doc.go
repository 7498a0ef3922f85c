// Package policycheck statically audits the crypto-adjacent packages for two
// classes of mistake that compile and run fine but quietly break the
// protocol's security assumptions: comparing secret byte slices with == or
// != instead of crypto/subtle, and formatting a secret with a hex verb in a
// log or error call. Both checks load source via go/packages rather than
// grepping text, so they see through aliasing and named byte-slice types.
package policycheck
