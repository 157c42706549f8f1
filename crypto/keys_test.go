package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	addr := key.PubKey().Address()
	encoded := addr.String()

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), decoded.Bytes())
	require.Equal(t, ImplicitPrefix, decoded.Prefix())
}

func TestAddressFromAliasIsDeterministic(t *testing.T) {
	a1 := AddressFromAlias("alice", false)
	a2 := AddressFromAlias("alice", false)
	require.Equal(t, a1.Bytes(), a2.Bytes())

	established := AddressFromAlias("alice", true)
	require.NotEqual(t, a1.Bytes(), established.Bytes())
	require.Equal(t, EstablishedPrefix, established.Prefix())

	other := AddressFromAlias("bob", false)
	require.NotEqual(t, a1.Bytes(), other.Bytes())
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	restored, err := PrivateKeyFromBytes(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().Bytes(), restored.PubKey().Address().Bytes())
}
