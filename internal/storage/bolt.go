package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

const databaseFileName = "keystore.db"

var (
	walletsBucket     = []byte("wallets")      // big-endian sequence -> wallet JSON
	walletIndexBucket = []byte("wallet-index") // address -> sequence
	keysBucket        = []byte("keys")         // address -> keystore JSON
	metaBucket        = []byte("meta")

	recentlyUsedKey = []byte("recently-used")
)

// Bolt is a Store backed by a bbolt file in the data directory
type Bolt struct {
	db           *bolt.DB
	databasePath string
}

// NewBolt opens (or creates) the store under dirPath.
func NewBolt(dirPath string) (*Bolt, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	datafile := filepath.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := boltDB.Update(func(tx *bolt.Tx) error {
		return createBuckets(tx, walletsBucket, walletIndexBucket, keysBucket, metaBucket)
	}); err != nil {
		_ = boltDB.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	return &Bolt{db: boltDB, databasePath: datafile}, nil
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return err
		}
	}
	return nil
}

// DatabasePath at which this store writes its file.
func (s *Bolt) DatabasePath() string {
	return s.databasePath
}

// Close closes the underlying database.
func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) Wallets(context.Context) ([]model.Wallet, error) {
	var wallets []model.Wallet
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(walletsBucket).ForEach(func(_, v []byte) error {
			var w model.Wallet
			if err := json.Unmarshal(v, &w); err != nil {
				return fmt.Errorf("failed to unmarshal wallet: %w", err)
			}
			wallets = append(wallets, w)
			return nil
		})
	})
	return wallets, err
}

func (s *Bolt) AddWallet(_ context.Context, w model.Wallet) error {
	enc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(walletIndexBucket)
		if index.Get(w.Address[:]) != nil {
			return fmt.Errorf("%w: %s", model.ErrDuplicateAccount, w.Address.Hex())
		}
		bkt := tx.Bucket(walletsBucket)
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := bkt.Put(key, enc); err != nil {
			return err
		}
		return index.Put(w.Address[:], key)
	})
}

func (s *Bolt) RemoveWallet(_ context.Context, addr common.Address) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(walletIndexBucket)
		key := index.Get(addr[:])
		if key == nil {
			return ErrNotFound
		}
		if err := tx.Bucket(walletsBucket).Delete(key); err != nil {
			return err
		}
		return index.Delete(addr[:])
	})
}

func (s *Bolt) RecentlyUsed(context.Context) (*common.Address, error) {
	var addr *common.Address
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metaBucket).Get(recentlyUsedKey)
		if v == nil {
			return nil
		}
		if len(v) != common.AddressLength {
			return fmt.Errorf("corrupt recently used entry of %d bytes", len(v))
		}
		a := common.BytesToAddress(v)
		addr = &a
		return nil
	})
	return addr, err
}

func (s *Bolt) SetRecentlyUsed(_ context.Context, addr *common.Address) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(metaBucket)
		if addr == nil {
			return bkt.Delete(recentlyUsedKey)
		}
		return bkt.Put(recentlyUsedKey, addr.Bytes())
	})
}

func (s *Bolt) Key(_ context.Context, addr common.Address) ([]byte, bool, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// values are only valid inside the transaction
		blob = bytes.Clone(tx.Bucket(keysBucket).Get(addr[:]))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return blob, blob != nil, nil
}

func (s *Bolt) PutKey(_ context.Context, addr common.Address, blob []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(keysBucket).Put(addr[:], blob)
	})
}

func (s *Bolt) DeleteKey(_ context.Context, addr common.Address) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(keysBucket)
		if bkt.Get(addr[:]) == nil {
			return ErrNotFound
		}
		return bkt.Delete(addr[:])
	})
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
