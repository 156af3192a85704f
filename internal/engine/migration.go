package engine

import "fmt"

// Migrate copies every bucket from a source store into a destination store.
// Used to import a legacy data directory into a live engine on startup.
func Migrate(src Store, dst Store) error {
	buckets, err := src.Buckets()
	if err != nil {
		return fmt.Errorf("failed to list buckets: %w", err)
	}

	for _, bucket := range buckets {
		data, err := src.DumpBucket(bucket)
		if err != nil {
			return fmt.Errorf("failed to dump bucket %s: %w", bucket, err)
		}
		for k, v := range data {
			if err := dst.Set(bucket, k, v); err != nil {
				return fmt.Errorf("failed to set key %s in destination: %w", k, err)
			}
		}
	}
	return nil
}
