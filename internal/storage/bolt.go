package storage

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	credentialsBucket = []byte("credentials") // username -> encoded verifier
	indexBucket       = []byte("index")       // username -> JSON {filename: storage id}
)

// BoltStore keeps both indices in a single bbolt database file. Each Save
// replaces the whole bucket in one transaction, preserving the snapshot
// semantics of the flat-file backend.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database and its bucket structure
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{credentialsBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Credentials returns the credential index repository view of the store
func (s *BoltStore) Credentials() CredentialRepository {
	return &boltCredentials{db: s.db}
}

// Index returns the file index repository view of the store
func (s *BoltStore) Index() IndexRepository {
	return &boltIndex{db: s.db}
}

type boltCredentials struct {
	db *bolt.DB
}

func (r *boltCredentials) Load() (Credentials, error) {
	creds := make(Credentials)
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(credentialsBucket)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			creds[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load credential index: %w", err)
	}
	return creds, nil
}

func (r *boltCredentials) Save(creds Credentials) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(credentialsBucket); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(credentialsBucket)
		if err != nil {
			return err
		}
		for username, verifier := range creds {
			if err := bucket.Put([]byte(username), []byte(verifier)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save credential index: %w", err)
	}
	return nil
}

type boltIndex struct {
	db *bolt.DB
}

func (r *boltIndex) Load() (FileIndex, error) {
	index := make(FileIndex)
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(indexBucket)
		if bucket == nil {
			return fmt.Errorf("index bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			files := make(map[string]string)
			if err := json.Unmarshal(v, &files); err != nil {
				return fmt.Errorf("corrupt index entry for %s: %w", k, err)
			}
			index[string(k)] = files
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load file index: %w", err)
	}
	return index, nil
}

func (r *boltIndex) Save(index FileIndex) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(indexBucket); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(indexBucket)
		if err != nil {
			return err
		}
		for username, files := range index {
			data, err := json.Marshal(files)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(username), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save file index: %w", err)
	}
	return nil
}
