package main

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// This file contains mocks and in-memory fakes needed to perform unit tests.

type MockCatalogStorage struct {
	CreateFunc func(ctx context.Context, book Book) error
	GetOneFunc func(ctx context.Context, isbn string) (Book, error)
	SaveFunc   func(ctx context.Context, book Book) error
	DeleteFunc func(ctx context.Context, isbn string) error
	GetAllFunc func(ctx context.Context) ([]Book, error)
}

func (m *MockCatalogStorage) Create(ctx context.Context, book Book) error {
	return m.CreateFunc(ctx, book)
}

func (m *MockCatalogStorage) GetOne(ctx context.Context, isbn string) (Book, error) {
	return m.GetOneFunc(ctx, isbn)
}

func (m *MockCatalogStorage) Save(ctx context.Context, book Book) error {
	return m.SaveFunc(ctx, book)
}

func (m *MockCatalogStorage) Delete(ctx context.Context, isbn string) error {
	return m.DeleteFunc(ctx, isbn)
}

func (m *MockCatalogStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// memCatalog is an in-memory CatalogStorage for service scenario tests.
type memCatalog struct {
	books map[string]Book
}

func newMemCatalog() *memCatalog {
	return &memCatalog{books: make(map[string]Book)}
}

func (mc *memCatalog) Create(_ context.Context, book Book) error {
	if _, ok := mc.books[book.ISBN]; ok {
		return ErrDuplicateISBN
	}
	mc.books[book.ISBN] = book
	return nil
}

func (mc *memCatalog) GetOne(_ context.Context, isbn string) (Book, error) {
	book, ok := mc.books[isbn]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return book, nil
}

func (mc *memCatalog) Save(_ context.Context, book Book) error {
	mc.books[book.ISBN] = book
	return nil
}

func (mc *memCatalog) Delete(_ context.Context, isbn string) error {
	if _, ok := mc.books[isbn]; !ok {
		return ErrBookNotFound
	}
	delete(mc.books, isbn)
	return nil
}

func (mc *memCatalog) GetAll(_ context.Context) ([]Book, error) {
	books := []Book{}
	for _, book := range mc.books {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
	return books, nil
}

// memLoans is an in-memory LoanStorage preserving insertion order.
type memLoans struct {
	ids   []string
	loans map[string]Loan
}

func newMemLoans() *memLoans {
	return &memLoans{loans: make(map[string]Loan)}
}

func (ml *memLoans) Add(_ context.Context, id string, loan Loan) error {
	if _, ok := ml.loans[id]; !ok {
		ml.ids = append(ml.ids, id)
	}
	ml.loans[id] = loan
	return nil
}

func (ml *memLoans) FindMatch(_ context.Context, isbn, studentName string) (Loan, error) {
	for _, id := range ml.ids {
		loan := ml.loans[id]
		if loan.ISBN == isbn && loan.StudentName == studentName {
			return loan, nil
		}
	}
	return Loan{}, ErrLoanNotFound
}

func (ml *memLoans) Delete(_ context.Context, id string) error {
	if _, ok := ml.loans[id]; !ok {
		return ErrLoanNotFound
	}
	delete(ml.loans, id)
	for i, knownID := range ml.ids {
		if knownID == id {
			ml.ids = append(ml.ids[:i], ml.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (ml *memLoans) DeleteByISBN(_ context.Context, isbn string) (int, error) {
	removed := 0
	kept := ml.ids[:0]
	for _, id := range ml.ids {
		if ml.loans[id].ISBN == isbn {
			delete(ml.loans, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	ml.ids = kept
	return removed, nil
}

func (ml *memLoans) GetAll(_ context.Context) ([]Loan, error) {
	loans := []Loan{}
	for _, id := range ml.ids {
		loans = append(loans, ml.loans[id])
	}
	return loans, nil
}

// memHistory is an in-memory append-only HistoryStorage.
type memHistory struct {
	records []History
}

func newMemHistory() *memHistory {
	return &memHistory{}
}

func (mh *memHistory) Append(_ context.Context, record History) error {
	mh.records = append(mh.records, record)
	return nil
}

func (mh *memHistory) GetAll(_ context.Context) ([]History, error) {
	return append([]History{}, mh.records...), nil
}

// memQueue is an in-memory Queuer recording pushed records.
type memQueue struct {
	records []History
}

func newMemQueue() *memQueue {
	return &memQueue{}
}

func (mq *memQueue) Push(_ context.Context, _ string, record History) error {
	mq.records = append(mq.records, record)
	return nil
}

func (mq *memQueue) Pop(_ context.Context, qids ...string) (string, History, error) {
	if len(mq.records) == 0 {
		return "", History{}, errors.New("queue is empty")
	}
	record := mq.records[0]
	mq.records = mq.records[1:]
	return qids[0], record, nil
}
