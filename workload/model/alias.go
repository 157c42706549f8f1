package model

import "strings"

// Alias is a stable string handle for a wallet entry. Spending-key and
// payment-address aliases are suffixed forms of a base identity; Base
// strips those suffixes so balances and precondition lookups aggregate
// per-identity rather than per-derived-form, per spec.md §3.
type Alias string

const (
	spendingKeySuffix   = "-spending-key"
	paymentAddrSuffix   = "-payment-address"
	// FaucetAlias is the reserved, conventionally infinite funding source.
	FaucetAlias Alias = "faucet"
	// NativeDenom is the reserved alias for the native token.
	NativeDenom Alias = "nam"
)

// Base returns the identity this alias refers to, stripping any
// spending-key/payment-address suffix.
func (a Alias) Base() Alias {
	s := string(a)
	s = strings.TrimSuffix(s, spendingKeySuffix)
	s = strings.TrimSuffix(s, paymentAddrSuffix)
	return Alias(s)
}

// SpendingKey returns the shielded spending-key alias for this identity.
func (a Alias) SpendingKey() Alias {
	return a.Base() + spendingKeySuffix
}

// PaymentAddress returns the shielded payment-address alias for this identity.
func (a Alias) PaymentAddress() Alias {
	return a.Base() + paymentAddrSuffix
}

// IsFaucet reports whether this alias (in any derived form) denotes the
// faucet identity.
func (a Alias) IsFaucet() bool {
	return a.Base() == FaucetAlias
}

// IsShieldedForm reports whether the alias names a derived spending-key or
// payment-address form rather than the base identity.
func (a Alias) IsShieldedForm() bool {
	s := string(a)
	return strings.HasSuffix(s, spendingKeySuffix) || strings.HasSuffix(s, paymentAddrSuffix)
}
