package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/spendlens/spendlens/internal/lineitem"
)

const (
	datasetBucketName = "datasets"
	recordBucketName  = "records"
)

// DB defines the interface for database operations
type DB interface {
	// SaveDataset saves dataset metadata to the database
	SaveDataset(ds *lineitem.Dataset) error

	// GetDataset retrieves a dataset by ID
	GetDataset(id string) (*lineitem.Dataset, error)

	// ListDatasets returns all datasets
	ListDatasets() ([]*lineitem.Dataset, error)

	// DeleteDataset removes a dataset and its records
	DeleteDataset(id string) error

	// SaveRecords stores the record sequence for a dataset, preserving order
	SaveRecords(datasetID string, records []lineitem.Record) error

	// GetRecords retrieves a dataset's record sequence in stored order
	GetRecords(datasetID string) ([]lineitem.Record, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(datasetBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(recordBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveDataset saves dataset metadata to the database
func (b *BoltDB) SaveDataset(ds *lineitem.Dataset) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(datasetBucketName))
		data, err := json.Marshal(ds)
		if err != nil {
			return fmt.Errorf("marshaling dataset: %w", err)
		}
		return bucket.Put([]byte(ds.ID), data)
	})
}

// GetDataset retrieves a dataset by ID
func (b *BoltDB) GetDataset(id string) (*lineitem.Dataset, error) {
	var ds *lineitem.Dataset
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(datasetBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("dataset not found: %s", id)
		}
		return json.Unmarshal(data, &ds)
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ListDatasets returns all datasets
func (b *BoltDB) ListDatasets() ([]*lineitem.Dataset, error) {
	datasets := make([]*lineitem.Dataset, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(datasetBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var ds lineitem.Dataset
			if err := json.Unmarshal(v, &ds); err != nil {
				return fmt.Errorf("unmarshaling dataset: %w", err)
			}
			datasets = append(datasets, &ds)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

// DeleteDataset removes a dataset and its records
func (b *BoltDB) DeleteDataset(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(recordBucketName)).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket([]byte(datasetBucketName)).Delete([]byte(id))
	})
}

// SaveRecords stores the record sequence for a dataset. The whole sequence is
// stored as one JSON array so the original row order survives round-trips;
// the deduplication pass depends on that order.
func (b *BoltDB) SaveRecords(datasetID string, records []lineitem.Record) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucketName))
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling records: %w", err)
		}
		return bucket.Put([]byte(datasetID), data)
	})
}

// GetRecords retrieves a dataset's record sequence in stored order
func (b *BoltDB) GetRecords(datasetID string) ([]lineitem.Record, error) {
	var records []lineitem.Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucketName))
		data := bucket.Get([]byte(datasetID))
		if data == nil {
			return fmt.Errorf("records not found for dataset: %s", datasetID)
		}
		return json.Unmarshal(data, &records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
