// Package bucket provides deterministic SHA-256 placement of a
// (stable id, feature key, salt) tuple into [0, 10_000), used to gate
// percentage rollouts. The algorithm is fixed by the spec and must produce
// bit-identical results across language ports, so it is built on
// crypto/sha256 rather than a faster non-cryptographic hash.
package bucket

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/konditional/konditional/internal/stableid"
)

// Size is the modulus of the bucket space, [0, Size).
const Size = 10_000

// MissingIDBucket is the bucket assigned when the context carries no stable
// id. It is deliberately the maximum bucket so that every rollout under
// 100% excludes an anonymous caller.
const MissingIDBucket = Size - 1

// Of computes the deterministic bucket for (salt, featureKey, id).
//
// The composed string is "<salt>:<featureKey>:<idHex>" in UTF-8 bytes; the
// first four bytes of its SHA-256 digest, read big-endian, are reduced
// modulo Size.
func Of(salt, featureKey string, id stableid.ID) int {
	if id.Empty() {
		return MissingIDBucket
	}
	seed := salt + ":" + featureKey + ":" + id.String()
	sum := sha256.Sum256([]byte(seed))
	n := binary.BigEndian.Uint32(sum[:4])
	return int(n % Size)
}

// Threshold converts a RampUp percentage in [0, 100] into a basis-point
// threshold in [0, 10_000] via round(p * 100).
func Threshold(percent float64) int {
	return int(percent*100 + 0.5)
}

// InRollout reports whether bucket b falls inside a rollout of percent%.
// Short-circuits: percent <= 0 is always false, percent >= 100 is always
// true, regardless of b.
func InRollout(percent float64, b int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return b < Threshold(percent)
}

// Info bundles the bucketing facts needed for an explain trace.
type Info struct {
	Bucket    int
	InRollout bool
	Threshold int
}

// Evaluate computes the full Info tuple in one pass.
func Evaluate(salt, featureKey string, id stableid.ID, percent float64) Info {
	b := Of(salt, featureKey, id)
	return Info{
		Bucket:    b,
		InRollout: InRollout(percent, b),
		Threshold: Threshold(percent),
	}
}
