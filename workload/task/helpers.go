package task

import (
	"context"

	"namada-resilience-test/workload/model"
)

// FeesMap builds the Alias->fee map check.Do expects for a single gas
// payer, omitting the faucet since spec.md §3 says it is never debited. The
// pipeline (C7) calls this when running a Task's checks.
func FeesMap(payer model.Alias) map[model.Alias]uint64 {
	if payer.IsFaucet() {
		return map[model.Alias]uint64{}
	}
	return map[model.Alias]uint64{payer: model.DefaultFee}
}

// queryBalance reads alias's pre-execution balance for denom, the first
// step of every BuildChecks implementation (spec.md §4.4: "reads pre-state
// for every quantity this Task will move").
func queryBalance(ctx context.Context, env *Env, alias model.Alias, denom model.Alias) (uint64, error) {
	return env.Chain.Balance(ctx, env.Resolve(alias), string(denom))
}

// queryShieldedBalance is queryBalance's shielded counterpart, resolving the
// payment-address form of alias through the shielded-sync source.
func queryShieldedBalance(ctx context.Context, env *Env, alias model.Alias) (uint64, error) {
	return env.Shielded.ShieldedBalance(ctx, env.Resolve(alias.PaymentAddress()), string(model.NativeDenom))
}

// queryBond reads the (source, validator) bond at atEpoch.
func queryBond(ctx context.Context, env *Env, source model.Alias, validator string, atEpoch uint64) (uint64, error) {
	return env.Chain.Bond(ctx, env.Resolve(source), validator, atEpoch)
}
