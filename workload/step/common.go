package step

import (
	"math/rand"

	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
)

// chooseGasPayer picks, among candidates, any account whose balance covers
// DefaultFee; falling back to the faucet, per spec.md §4.5.2.
func chooseGasPayer(state *model.State, candidates []model.Alias) model.Alias {
	for _, c := range candidates {
		if state.Balance(c) >= model.DefaultFee {
			return c
		}
	}
	return model.FaucetAlias
}

// pickAlias draws one alias uniformly from state's known accounts matching
// pred, returning ok=false if none qualify.
func pickAlias(state *model.State, r *rand.Rand, pred func(model.Alias) bool) (model.Alias, bool) {
	var candidates []model.Alias
	for _, a := range state.Accounts() {
		if pred(a) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Between(r, 0, int64(len(candidates)-1))], true
}

// pickTwoDistinctAliases draws two distinct aliases matching pred.
func pickTwoDistinctAliases(state *model.State, r *rand.Rand, pred func(model.Alias) bool) (model.Alias, model.Alias, bool) {
	var candidates []model.Alias
	for _, a := range state.Accounts() {
		if pred(a) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) < 2 {
		return "", "", false
	}
	i := rng.Between(r, 0, int64(len(candidates)-1))
	var j int64
	for {
		j = rng.Between(r, 0, int64(len(candidates)-1))
		if j != i {
			break
		}
	}
	return candidates[i], candidates[j], true
}

// hasMinBalance builds a predicate for pickAlias selecting accounts holding
// at least b native tokens.
func hasMinBalance(state *model.State, b uint64) func(model.Alias) bool {
	return func(a model.Alias) bool { return state.Balance(a) >= b }
}

// anyValidator draws a random known validator address.
func anyValidator(state *model.State, r *rand.Rand) (model.Alias, bool) {
	vs := state.Validators()
	if len(vs) == 0 {
		return "", false
	}
	return vs[rng.Between(r, 0, int64(len(vs)-1))], true
}

// randomAmount draws a uniform transfer-shaped amount between one native
// token and the caller's available ceiling.
func randomAmount(r *rand.Rand, ceiling uint64) uint64 {
	if ceiling <= model.NativeScale {
		return ceiling
	}
	return uint64(rng.Between(r, int64(model.NativeScale), int64(ceiling)))
}

// bondPair names a delegator/validator pair with a positive bond.
type bondPair struct {
	Source    model.Alias
	Validator string
}

// anyBondedPair draws a random (delegator, validator) pair with a positive
// bond, for steps that need to unbond or redelegate.
func anyBondedPair(state *model.State, r *rand.Rand) (bondPair, bool) {
	var candidates []bondPair
	for _, a := range state.Accounts() {
		for _, v := range state.Validators() {
			if state.Bond(a, string(v)) > 0 {
				candidates = append(candidates, bondPair{Source: a, Validator: string(v)})
			}
		}
	}
	if len(candidates) == 0 {
		return bondPair{}, false
	}
	return candidates[rng.Between(r, 0, int64(len(candidates)-1))], true
}
