package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keys holding the three record collections.
const (
	HBooks   string = "books"
	HLoans   string = "loans"
	LHistory string = "history"
)

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

type redisCatalogStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisCatalogStorage provides an instance of redis-based books catalog.
func NewRedisCatalogStorage(logger *zap.Logger, client *redis.Client) CatalogStorage {
	return &redisCatalogStorage{
		logger: logger,
		client: client,
	}
}

// Create inserts a new book record. The isbn acts as the unique key so
// HSetNX reports an already existing record atomically.
func (rs *redisCatalogStorage) Create(ctx context.Context, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	inserted, err := rs.client.HSetNX(ctx, HBooks, book.ISBN, bookBytes).Result()
	if err != nil {
		return err
	}
	if !inserted {
		return ErrDuplicateISBN
	}
	return nil
}

// GetOne retrieves a book record based on its isbn.
func (rs *redisCatalogStorage) GetOne(ctx context.Context, isbn string) (Book, error) {
	var book Book
	bookJSONString, err := rs.client.HGet(ctx, HBooks, isbn).Result()
	if err == redis.Nil {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Save replaces existing book record data or inserts the book if it does not exist.
func (rs *redisCatalogStorage) Save(ctx context.Context, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HBooks, book.ISBN, bookBytes).Err()
}

// Delete removes a book record based on its isbn.
func (rs *redisCatalogStorage) Delete(ctx context.Context, isbn string) error {
	removed, err := rs.client.HDel(ctx, HBooks, isbn).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetAll retrieves the list of all books sorted by title ascending.
func (rs *redisCatalogStorage) GetAll(ctx context.Context) ([]Book, error) {
	mapBooks, err := rs.client.HVals(ctx, HBooks).Result()
	if err != nil {
		return nil, err
	}
	books := []Book{}
	for _, bookJSONString := range mapBooks {
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
	return books, nil
}

type redisLoanStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisLoanStorage provides an instance of redis-based loans ledger.
func NewRedisLoanStorage(logger *zap.Logger, client *redis.Client) LoanStorage {
	return &redisLoanStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new loan record under its generated id.
func (rs *redisLoanStorage) Add(ctx context.Context, id string, loan Loan) error {
	loanBytes, err := json.Marshal(loan)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HLoans, id, loanBytes).Err()
}

// FindMatch returns the first loan record matching the (isbn, studentName)
// pair. Records are scanned in id order so repeated calls close duplicated
// pairs deterministically, one record per call.
func (rs *redisLoanStorage) FindMatch(ctx context.Context, isbn, studentName string) (Loan, error) {
	var loan Loan
	mapLoans, err := rs.client.HGetAll(ctx, HLoans).Result()
	if err != nil {
		return loan, err
	}
	ids := make([]string, 0, len(mapLoans))
	for id := range mapLoans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err = json.Unmarshal([]byte(mapLoans[id]), &loan); err != nil {
			return Loan{}, err
		}
		if loan.ISBN == isbn && loan.StudentName == studentName {
			return loan, nil
		}
	}
	return Loan{}, ErrLoanNotFound
}

// Delete removes a loan record based on its id.
func (rs *redisLoanStorage) Delete(ctx context.Context, id string) error {
	removed, err := rs.client.HDel(ctx, HLoans, id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrLoanNotFound
	}
	return nil
}

// DeleteByISBN removes all loan records referencing the given isbn and
// reports how many records went away. Used by the book deletion cascade.
func (rs *redisLoanStorage) DeleteByISBN(ctx context.Context, isbn string) (int, error) {
	mapLoans, err := rs.client.HGetAll(ctx, HLoans).Result()
	if err != nil {
		return 0, err
	}
	ids := []string{}
	for id, loanJSONString := range mapLoans {
		var loan Loan
		if err = json.Unmarshal([]byte(loanJSONString), &loan); err != nil {
			return 0, err
		}
		if loan.ISBN == isbn {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	removed, err := rs.client.HDel(ctx, HLoans, ids...).Result()
	return int(removed), err
}

// GetAll retrieves the list of all outstanding loans.
func (rs *redisLoanStorage) GetAll(ctx context.Context) ([]Loan, error) {
	mapLoans, err := rs.client.HGetAll(ctx, HLoans).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(mapLoans))
	for id := range mapLoans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	loans := []Loan{}
	for _, id := range ids {
		var loan Loan
		if err = json.Unmarshal([]byte(mapLoans[id]), &loan); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

type redisHistoryStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisHistoryStorage provides an instance of redis-based returns history.
func NewRedisHistoryStorage(logger *zap.Logger, client *redis.Client) HistoryStorage {
	return &redisHistoryStorage{
		logger: logger,
		client: client,
	}
}

// Append adds a record at the end of the history list. History is
// append-only so there is no update or delete counterpart.
func (rs *redisHistoryStorage) Append(ctx context.Context, record History) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rs.client.RPush(ctx, LHistory, recordBytes).Err()
}

// GetAll retrieves all history records in insertion order.
func (rs *redisHistoryStorage) GetAll(ctx context.Context) ([]History, error) {
	listRecords, err := rs.client.LRange(ctx, LHistory, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := []History{}
	for _, recordJSONString := range listRecords {
		var record History
		if err = json.Unmarshal([]byte(recordJSONString), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
