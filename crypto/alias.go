package crypto

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressFromAlias deterministically derives a 20-byte address for a wallet
// alias, grounded on the Keccak256 identifier derivation used elsewhere in
// this codebase's account package. It lets the harness assign every alias a
// stable address without minting and persisting a real keypair for each one.
func AddressFromAlias(alias string, established bool) Address {
	hash := ethcrypto.Keccak256([]byte(alias))
	prefix := ImplicitPrefix
	if established {
		prefix = EstablishedPrefix
	}
	return MustNewAddress(prefix, hash[12:])
}
