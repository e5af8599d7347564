package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltArchive returns a new instance of the archive in a temporary path.
func newTestBoltArchive() (*boltHistoryArchive, error) {
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	if err != nil {
		return nil, err
	}
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   f.Name(),
			Timeout:    5 * time.Second,
			BucketName: "test.history",
		},
	}

	client, err := GetBoltDBClient(testConfig)

	return &boltHistoryArchive{
		logger: zap.NewNop(),
		client: client,
		config: &testConfig.BoltDB,
	}, err
}

// closeTestBoltArchive closes the temporary archive and removes the underlying data file.
func (ba *boltHistoryArchive) closeTestBoltArchive() error {
	defer os.Remove(ba.config.FilePath)
	return ba.Close()
}

// Ensure bolt archive can persist a returns record.
func TestBoltArchive_AppendRecord(t *testing.T) {
	ba, err := newTestBoltArchive()
	require.NoError(t, err, "failed in creating a test bolt archive")
	defer ba.closeTestBoltArchive()
	testRecordID := "h:0"

	// Archive a new returns record.
	record := History{ID: testRecordID, ISBN: "9780134190440", Title: "The Go Programming Language", StudentName: "John Doe"}
	err = ba.Append(context.TODO(), record)
	assert.NoError(t, err)

	// Verify the record can be retrieved.
	records, err := ba.GetAll(context.TODO())
	assert.NoError(t, err)
	require.Equal(t, 1, len(records))
	assert.Equal(t, record, records[0])
}

// Ensure appending an already archived id replaces the record in place.
func TestBoltArchive_AppendSameID(t *testing.T) {
	ba, err := newTestBoltArchive()
	require.NoError(t, err, "failed in creating a test bolt archive")
	defer ba.closeTestBoltArchive()

	err = ba.Append(context.TODO(), History{ID: "h:0", StudentName: "John Doe"})
	assert.NoError(t, err)
	err = ba.Append(context.TODO(), History{ID: "h:0", StudentName: "Jane Doe"})
	assert.NoError(t, err)

	records, err := ba.GetAll(context.TODO())
	assert.NoError(t, err)
	require.Equal(t, 1, len(records))
	assert.Equal(t, "Jane Doe", records[0].StudentName)
}
