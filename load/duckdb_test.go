package load

import (
	"log/slog"
	"os"
	"testing"

	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/stretchr/testify/assert"
)

func setupTestDB(t *testing.T) *DuckDB {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		DuckDB: config.DuckDBConfig{
			Path: ":memory:",
		},
	}

	db, err := NewDuckDB(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create DuckDB instance: %v", err)
	}

	return db
}

// setupWarehouse creates an in-memory database with the warehouse schema.
func setupWarehouse(t *testing.T) *DuckDB {
	db := setupTestDB(t)
	if err := db.RunQueryFile(utils.SQLPath("init__schema.sql")); err != nil {
		db.Close()
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return db
}

func TestNewDuckDB(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	assert.NotNil(t, db.DB)
}

func TestRunQuery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Create a test table
	createTableQuery := "CREATE TABLE test (id INTEGER, name STRING);"
	err := db.RunQuery(createTableQuery)
	assert.NoError(t, err)

	// Insert data into the test table
	insertQuery := "INSERT INTO test VALUES (1, 'Alice'), (2, 'Bob');"
	err = db.RunQuery(insertQuery)
	assert.NoError(t, err)

	// Verify the data was inserted correctly
	results, err := db.GetQueryResults("SELECT * FROM test ORDER BY id;")
	assert.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"id":   {"1", "2"},
		"name": {"Alice", "Bob"},
	}, results)
}

func TestRunQueryFile_SchemaInit(t *testing.T) {
	db := setupWarehouse(t)
	defer db.Close()

	// All four fact tables must exist and be empty
	for _, table := range []string{"f_price_daily", "f_macro", "f_trends", "f_news_sentiment"} {
		results, err := db.GetQueryResults("SELECT count(*) AS n FROM " + table + ";")
		assert.NoError(t, err)
		assert.Equal(t, []string{"0"}, results["n"])
	}
}

func TestGetQueryResults_Error(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetQueryResults("SELECT * FROM no_such_table;")
	assert.Error(t, err)
}
