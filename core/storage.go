package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// StorageKey is the final key of a runtime storage entry
type StorageKey []byte

func (k StorageKey) Hex() string {
	return "0x" + hex.EncodeToString(k)
}

func (k StorageKey) String() string {
	return k.Hex()
}

// StorageHasher is the hashing scheme of one storage map key position
type StorageHasher uint8

const (
	Blake2_128 StorageHasher = iota
	Blake2_256Hasher
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

func (h StorageHasher) String() string {
	switch h {
	case Blake2_128:
		return "Blake2_128"
	case Blake2_256Hasher:
		return "Blake2_256"
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Twox128:
		return "Twox128"
	case Twox256:
		return "Twox256"
	case Twox64Concat:
		return "Twox64Concat"
	case Identity:
		return "Identity"
	default:
		return fmt.Sprintf("StorageHasher(%d)", uint8(h))
	}
}

// Hash applies the hasher to data. Concat hashers append the data to the digest.
func (h StorageHasher) Hash(data []byte) []byte {
	switch h {
	case Blake2_128:
		return blake2b128(data)
	case Blake2_256Hasher:
		d := blake2b.Sum256(data)
		return d[:]
	case Blake2_128Concat:
		return append(blake2b128(data), data...)
	case Twox128:
		return twox(data, 2)
	case Twox256:
		return twox(data, 4)
	case Twox64Concat:
		return append(twox(data, 1), data...)
	case Identity:
		return append([]byte(nil), data...)
	default:
		panic(fmt.Sprintf("unknown storage hasher: %d", uint8(h)))
	}
}

func blake2b128(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err)
	}
	h.Write(data)
	return h.Sum(nil)
}

// twox concatenates xxh64 digests with seeds 0..n-1, each little endian
func twox(data []byte, n int) []byte {
	out := make([]byte, 0, 8*n)
	for seed := 0; seed < n; seed++ {
		d := xxhash.NewWithSeed(uint64(seed))
		d.Write(data)
		out = binary.LittleEndian.AppendUint64(out, d.Sum64())
	}
	return out
}

// StoragePrefix returns twox128(pallet) ++ twox128(item)
func StoragePrefix(pallet, item string) []byte {
	return append(twox([]byte(pallet), 2), twox([]byte(item), 2)...)
}

// StorageValueKey returns the key of a plain storage value
func StorageValueKey(pallet, item string) StorageKey {
	return StorageKey(StoragePrefix(pallet, item))
}

// StorageMapKey returns the final key of a single-key map entry
func StorageMapKey(pallet, mapName string, key []byte, hasher StorageHasher) StorageKey {
	return StorageKey(append(StoragePrefix(pallet, mapName), hasher.Hash(key)...))
}

// StorageDoubleMapKey returns the final key of a double-key map entry
func StorageDoubleMapKey(pallet, mapName string, key1 []byte, hasher1 StorageHasher, key2 []byte, hasher2 StorageHasher) StorageKey {
	k := StoragePrefix(pallet, mapName)
	k = append(k, hasher1.Hash(key1)...)
	k = append(k, hasher2.Hash(key2)...)
	return StorageKey(k)
}

// StorageVersionKey is the well-known key under which every FRAME pallet stores its version
func StorageVersionKey(pallet string) StorageKey {
	return StorageKey(append(twox([]byte(pallet), 2), twox([]byte(":__STORAGE_VERSION__:"), 2)...))
}

// AccountInfoStorageKey returns the key of System.Account for the given account
func AccountInfoStorageKey(account AccountID) StorageKey {
	return StorageMapKey("System", "Account", account[:], Blake2_128Concat)
}
