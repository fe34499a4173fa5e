package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	log "github.com/go-pkgz/lgr"
	bbolt "go.etcd.io/bbolt"
)

const (
	transactionsBucketName = "transactions" // userId -> transaction record
	reviewsBucketName      = "reviews"      // seq -> review
	reportsBucketName      = "reports"      // seq -> report
)

// store.Interface implementation
var _ Interface = (*BoltDB)(nil)

// BoltDB persists escrow records in a single bolt file. Same contract as
// the memory store, one current transaction per user plus append-only
// reviews and reports.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates or opens DB, and creates buckets
func NewBoltDB(fileName string) (*BoltDB, error) {
	log.Printf("[INFO] creating bolt store %s", fileName)
	db, err := bbolt.Open(fileName, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", fileName, err)
	}

	buckets := []string{transactionsBucketName, reviewsBucketName, reportsBucketName}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bktName := range buckets {
			if _, e := tx.CreateBucketIfNotExists([]byte(bktName)); e != nil {
				return fmt.Errorf("failed to create top level bucket %s: %w", bktName, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create top level buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) Create(t Transaction) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(transactionsBucketName))
		buf, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		return bkt.Put(itob64(t.UserID), buf)
	})
}

func (b *BoltDB) Get(userID int64) (Transaction, error) {
	var t Transaction
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(transactionsBucketName))
		v := bkt.Get(itob64(userID))
		if v == nil {
			return ErrNotFound
		}
		if e := json.Unmarshal(v, &t); e != nil {
			return fmt.Errorf("failed to unmarshal: %w", e)
		}
		return nil
	})
	return t, err
}

// Update applies fn inside a single bolt write transaction, concurrent
// callers can't interleave the read-modify-write.
func (b *BoltDB) Update(userID int64, fn func(t *Transaction) error) (Transaction, error) {
	var t Transaction
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(transactionsBucketName))
		v := bkt.Get(itob64(userID))
		if v == nil {
			return ErrNotFound
		}
		if e := json.Unmarshal(v, &t); e != nil {
			return fmt.Errorf("failed to unmarshal: %w", e)
		}
		if e := fn(&t); e != nil {
			return e
		}
		buf, e := json.Marshal(t)
		if e != nil {
			return fmt.Errorf("failed to marshal transaction: %w", e)
		}
		return bkt.Put(itob64(userID), buf)
	})
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (b *BoltDB) Reset(userID int64) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if e := tx.Bucket([]byte(transactionsBucketName)).Delete(itob64(userID)); e != nil {
			return fmt.Errorf("failed to remove transaction for user %d: %w", userID, e)
		}
		return nil
	})
}

func (b *BoltDB) AddReview(r Review) error {
	return b.appendTo(reviewsBucketName, r)
}

func (b *BoltDB) AddReport(r Report) error {
	return b.appendTo(reportsBucketName, r)
}

func (b *BoltDB) appendTo(bktName string, rec interface{}) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bktName))
		id, err := bkt.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence for %s: %w", bktName, err)
		}
		buf, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		return bkt.Put(uitob64(id), buf)
	})
}

// itob64 returns an 8-byte big endian representation of v.
func itob64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func uitob64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Close boltdb store
func (b *BoltDB) Close() error {
	return b.db.Close()
}
