package rng

import (
	"math/rand"
)

const aliasCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Between returns a uniform integer in [lo, hi], inclusive on both ends, per
// spec.md §4.5.2's random_between.
func Between(r *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Int63n(hi-lo+1)
}

// RandomString returns a string of n characters drawn from [A-Za-z0-9], per
// spec.md §4.5.2's get_random_string.
func RandomString(r *rand.Rand, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = aliasCharset[r.Intn(len(aliasCharset))]
	}
	return string(out)
}

// RandomAlias returns a fresh "workload-generator-<8 alphanumeric>" alias, per
// spec.md §4.5.2's random_alias.
func RandomAlias(r *rand.Rand) string {
	return "workload-generator-" + RandomString(r, 8)
}

// CoinFlip returns true with probability p, per spec.md §4.5.2's coin_flip.
func CoinFlip(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}
