package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// boltHistoryArchive is the durable copy of the returns history. It is
// fed by the queue consumer so the audit trail survives a redis flush.
type boltHistoryArchive struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltHistoryArchive provides an instance of bolt-based history archive.
func NewBoltHistoryArchive(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) HistoryStorage {
	return &boltHistoryArchive{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based history archive.
func (ba *boltHistoryArchive) Close() error {
	return ba.client.Close()
}

// Append persists a history record into the archive bucket keyed by its id.
func (ba *boltHistoryArchive) Append(_ context.Context, record History) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	err = ba.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ba.config.BucketName)).Put([]byte(record.ID), recordBytes)
	})
	return err
}

// GetAll retrieves all archived history records.
func (ba *boltHistoryArchive) GetAll(_ context.Context) ([]History, error) {
	tx, err := ba.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Create a cursor on the history bucket.
	c := tx.Bucket([]byte(ba.config.BucketName)).Cursor()

	records := []History{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var record History
		if err = json.Unmarshal(v, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
