package crypto

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Wallet is the core's read/write view onto the wallet directory the
// out-of-scope transaction-builder SDK owns the layout of (spec.md §6,
// "Layout is owned by the SDK collaborator; the core reads/writes only by
// alias"). Reads take a read-lock, writes an exclusive lock, and a writer
// drops the lock before any suspension, per spec.md §5's shared-resource
// policy.
type Wallet struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string // alias -> hex-encoded private key
}

type walletFile struct {
	Keys map[string]string `toml:"keys"`
}

// OpenWallet loads wallet-<thread_id>/wallet.toml, creating an empty one if
// it does not yet exist.
func OpenWallet(dir string) (*Wallet, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("crypto: create wallet dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "wallet.toml")
	w := &Wallet{path: path, entries: make(map[string]string)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return w, nil
	}
	var file walletFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("crypto: decode wallet %s: %w", path, err)
	}
	if file.Keys != nil {
		w.entries = file.Keys
	}
	return w, nil
}

// Get returns the private key stored under alias, if any.
func (w *Wallet) Get(alias string) (*PrivateKey, bool) {
	w.mu.RLock()
	raw, ok := w.entries[alias]
	w.mu.RUnlock()
	if !ok {
		return nil, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	key, err := PrivateKeyFromBytes(b)
	if err != nil {
		return nil, false
	}
	return key, true
}

// Address resolves alias to its on-chain address, generating and persisting
// a fresh keypair the first time alias is seen.
func (w *Wallet) Address(alias string) (Address, error) {
	if key, ok := w.Get(alias); ok {
		return key.PubKey().Address(), nil
	}
	key, err := GeneratePrivateKey()
	if err != nil {
		return Address{}, fmt.Errorf("crypto: generate key for %s: %w", alias, err)
	}
	if err := w.Put(alias, key); err != nil {
		return Address{}, err
	}
	return key.PubKey().Address(), nil
}

// Put stores key under alias and rewrites wallet.toml. The write lock is
// held only across the in-memory update; the file is then written from a
// copy taken under the lock. Aliases that have a keystore file (see
// PutEncrypted) are left out of wallet.toml.
func (w *Wallet) Put(alias string, key *PrivateKey) error {
	w.mu.Lock()
	w.entries[alias] = hex.EncodeToString(key.Bytes())
	snapshot := make(map[string]string, len(w.entries))
	for k, v := range w.entries {
		if _, err := os.Stat(w.keystorePath(k)); err == nil {
			continue
		}
		snapshot[k] = v
	}
	w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("crypto: write wallet %s: %w", w.path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(walletFile{Keys: snapshot})
}

// keystorePath is where PutEncrypted/GetEncrypted persist alias, alongside
// the plaintext wallet.toml in the same wallet directory.
func (w *Wallet) keystorePath(alias string) string {
	return filepath.Join(filepath.Dir(w.path), alias+".keystore")
}

// PutEncrypted persists key under alias as an Ethereum v3 keystore file
// rather than in the plaintext wallet.toml, then caches it in memory so
// Get(alias) still resolves it for the lifetime of this process. It is for
// the one key the wallet directory holds that isn't an ephemeral generated
// test identity: the faucet key supplied through config, which must survive
// restarts without sitting on disk in the clear.
func (w *Wallet) PutEncrypted(alias string, key *PrivateKey, passphrase string) error {
	if err := SaveToKeystore(w.keystorePath(alias), key, passphrase); err != nil {
		return err
	}
	w.cacheInMemory(alias, key)
	return nil
}

// GetEncrypted loads a key alias previously stored via PutEncrypted and
// caches it in memory. ok is false when no keystore file exists yet for
// alias.
func (w *Wallet) GetEncrypted(alias, passphrase string) (key *PrivateKey, ok bool, err error) {
	path := w.keystorePath(alias)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return nil, false, nil
	}
	key, err = LoadFromKeystore(path, passphrase)
	if err != nil {
		return nil, false, err
	}
	w.cacheInMemory(alias, key)
	return key, true, nil
}

// cacheInMemory records key under alias for Get/Address to resolve without
// writing it to the plaintext wallet.toml on disk.
func (w *Wallet) cacheInMemory(alias string, key *PrivateKey) {
	w.mu.Lock()
	w.entries[alias] = hex.EncodeToString(key.Bytes())
	w.mu.Unlock()
}
