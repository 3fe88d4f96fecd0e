package core

import (
	"context"

	"github.com/cockroachdb/errors"
)

// VerifyStorageLayout checks that every pallet the relayer reads from exists on the chain.
// A pallet name that does not match the runtime would otherwise show up as silently
// empty reads, so a missing `:__STORAGE_VERSION__:` entry is a ConfigurationError.
func VerifyStorageLayout(ctx context.Context, chain ChainReader, pallets ...string) error {
	for _, pallet := range pallets {
		if pallet == "" {
			continue
		}
		bz, err := chain.Storage(ctx, StorageVersionKey(pallet), nil)
		if err != nil {
			return errors.Wrapf(err, "failed to read the storage version of pallet %s", pallet)
		}
		if bz == nil {
			return NewConfigurationError("pallet %s is not found in the runtime", pallet)
		}
	}
	return nil
}
