package store

import (
	"bytes"
	"io/fs"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// Stats is a compact view of store contents for the ops endpoint.
type Stats struct {
	Conversations int
	Messages      int
	DiskBytes     uint64
}

// CollectStats walks the keyspace counting records and the data directory
// for on-disk size. Best effort; a partially written directory still
// reports what it can.
func (s *Store) CollectStats() (Stats, error) {
	var st Stats
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return st, err
	}
	defer iter.Close()
	prefix := []byte(convPrefix)
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if bytes.HasSuffix(iter.Key(), []byte(":meta")) {
			st.Conversations++
		} else if bytes.Contains(iter.Key(), []byte(":msg:")) {
			st.Messages++
		}
	}
	if err := iter.Error(); err != nil {
		return st, err
	}
	_ = filepath.WalkDir(s.path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, ferr := d.Info(); ferr == nil {
			st.DiskBytes += uint64(fi.Size())
		}
		return nil
	})
	return st, nil
}
