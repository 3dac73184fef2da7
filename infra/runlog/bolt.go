package runlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kilianp07/predictability/core/runlog"
)

const runsBucket = "runs"

// BoltStore keeps training runs in a BoltDB file. Keys are the big-endian
// start time followed by the run ID, so a cursor walks runs in start order.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func runKey(r runlog.Record) []byte {
	key := make([]byte, 8, 8+len(r.RunID))
	binary.BigEndian.PutUint64(key, uint64(r.StartedAt.UnixNano()))
	return append(key, r.RunID...)
}

// Append stores rec, replacing a run with the same start time and ID.
func (s *BoltStore) Append(ctx context.Context, rec runlog.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).Put(runKey(rec), data)
	})
}

// Query walks the runs in start order, seeking to q.Start when set.
func (s *BoltStore) Query(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	var res []runlog.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		k, v := c.First()
		if !q.Start.IsZero() {
			seek := make([]byte, 8)
			binary.BigEndian.PutUint64(seek, uint64(q.Start.UnixNano()))
			k, v = c.Seek(seek)
		}
		for ; k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r runlog.Record
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			if !q.End.IsZero() && r.StartedAt.After(q.End) {
				break
			}
			if q.Match(r) {
				res = append(res, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
