package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type LibraryServiceProvider interface {
	ListBooks(ctx context.Context) ([]Book, error)
	AddBook(ctx context.Context, row BookRow) (Book, error)
	UpdateBook(ctx context.Context, isbn string, book Book) (Book, error)
	DeleteBook(ctx context.Context, isbn string) error
	ImportBooks(ctx context.Context, rows []BookRow) (ImportReport, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	LoanBook(ctx context.Context, loan Loan) (Loan, error)
	ReturnBook(ctx context.Context, isbn, studentName string) error
	ListHistory(ctx context.Context) ([]History, error)
}

// isbnLocker hands out one mutex per isbn so every mutation of a given
// book (loan, return, merge, edit, delete) runs as a single unit. The
// storage check-then-act sequences stay race-free under concurrent
// requests for the same title.
type isbnLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newISBNLocker() *isbnLocker {
	return &isbnLocker{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex guarding the given isbn and returns the
// matching unlock function.
func (il *isbnLocker) Acquire(isbn string) func() {
	il.mu.Lock()
	l, ok := il.locks[isbn]
	if !ok {
		l = &sync.Mutex{}
		il.locks[isbn] = l
	}
	il.mu.Unlock()
	l.Lock()
	return l.Unlock
}

type LibraryService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	ids     UIDHandler
	catalog CatalogStorage
	loans   LoanStorage
	history HistoryStorage
	queue   Queuer
	locker  *isbnLocker
}

func NewLibraryService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, catalog CatalogStorage, loans LoanStorage, history HistoryStorage, queue Queuer) LibraryServiceProvider {
	return &LibraryService{
		logger:  logger,
		config:  config,
		clock:   clock,
		ids:     ids,
		catalog: catalog,
		loans:   loans,
		history: history,
		queue:   queue,
		locker:  newISBNLocker(),
	}
}

// ListBooks returns the whole catalog sorted by title ascending.
func (ls *LibraryService) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := ls.catalog.GetAll(ctx)
	return books, err
}

// AddBook merges a manually submitted book into the catalog: a known
// isbn gets the submitted quantity added to its total copies, a new
// isbn creates the book. Import batches apply the same policy per row.
func (ls *LibraryService) AddBook(ctx context.Context, row BookRow) (Book, error) {
	unlock := ls.locker.Acquire(row.ISBN)
	defer unlock()

	created, err := ls.mergeRow(ctx, row)
	if err != nil {
		return Book{}, err
	}
	if created {
		ls.logger.Info("service: book created", zap.String("book.isbn", row.ISBN))
	} else {
		ls.logger.Info("service: book copies merged", zap.String("book.isbn", row.ISBN))
	}
	return ls.catalog.GetOne(ctx, row.ISBN)
}

// mergeRow applies the merge-on-add policy for one record. It reports
// whether a new book was created. Callers must hold the isbn lock.
func (ls *LibraryService) mergeRow(ctx context.Context, row BookRow) (bool, error) {
	book, err := ls.catalog.GetOne(ctx, row.ISBN)
	switch err {
	case nil:
		book.TotalCopies += row.AdditionalCopies()
		return false, ls.catalog.Save(ctx, book)
	case ErrBookNotFound:
		return true, ls.catalog.Create(ctx, row.NewBook())
	default:
		return false, err
	}
}

// ImportBooks processes a batch of candidate rows strictly in input
// order. Rows without isbn or title are skipped silently. A duplicate
// key raised by a create is counted and the batch moves on; any other
// per-row failure is logged and skipped as well. Mutations already
// applied by earlier rows are never rolled back.
func (ls *LibraryService) ImportBooks(ctx context.Context, rows []BookRow) (ImportReport, error) {
	var report ImportReport
	for _, row := range rows {
		if row.ISBN == "" || row.Title == "" {
			continue
		}

		unlock := ls.locker.Acquire(row.ISBN)
		created, err := ls.mergeRow(ctx, row)
		unlock()

		switch {
		case err == nil && created:
			report.Added++
		case err == nil:
			report.Updated++
		case err == ErrDuplicateISBN:
			report.Duplicates++
			ls.logger.Warn("service: import skipped duplicate isbn", zap.String("book.isbn", row.ISBN))
		default:
			ls.logger.Error("service: import failed for row", zap.String("book.isbn", row.ISBN), zap.String("book.title", row.Title), zap.Error(err))
		}
	}
	return report, nil
}

// UpdateBook replaces the editable attributes of the book identified by
// its original isbn. The isbn itself may change; loaned copies are kept
// as-is and the new total must still cover them.
func (ls *LibraryService) UpdateBook(ctx context.Context, isbn string, book Book) (Book, error) {
	unlock := ls.locker.Acquire(isbn)
	defer unlock()

	existing, err := ls.catalog.GetOne(ctx, isbn)
	if err != nil {
		return Book{}, err
	}

	if book.TotalCopies < existing.LoanedCopies {
		return Book{}, ErrInsufficientCopies
	}
	book.LoanedCopies = existing.LoanedCopies

	if book.ISBN == isbn {
		return book, ls.catalog.Save(ctx, book)
	}

	// The isbn changes: the record moves under its new key. Outstanding
	// loans keep referencing the old isbn, as deletion does.
	if err = ls.catalog.Create(ctx, book); err != nil {
		return Book{}, err
	}
	if err = ls.catalog.Delete(ctx, isbn); err != nil {
		return Book{}, err
	}
	ls.logger.Info("service: book isbn changed", zap.String("book.isbn.old", isbn), zap.String("book.isbn.new", book.ISBN))
	return book, nil
}

// DeleteBook removes a book and cascades the deletion of all its
// outstanding loans. The cascade writes no history: removing a book is
// not a mass return, its loaned copies simply vanish from the ledger.
func (ls *LibraryService) DeleteBook(ctx context.Context, isbn string) error {
	unlock := ls.locker.Acquire(isbn)
	defer unlock()

	if err := ls.catalog.Delete(ctx, isbn); err != nil {
		return err
	}
	removed, err := ls.loans.DeleteByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	ls.logger.Info("service: book deleted", zap.String("book.isbn", isbn), zap.Int("loans.cascaded", removed))
	return nil
}

// ListLoans returns all outstanding loans.
func (ls *LibraryService) ListLoans(ctx context.Context) ([]Loan, error) {
	loans, err := ls.loans.GetAll(ctx)
	return loans, err
}

// LoanBook checks out one copy: it requires the book to exist with at
// least one available copy, increments the loaned counter and records
// the loan. On failure nothing is mutated.
func (ls *LibraryService) LoanBook(ctx context.Context, loan Loan) (Loan, error) {
	unlock := ls.locker.Acquire(loan.ISBN)
	defer unlock()

	book, err := ls.catalog.GetOne(ctx, loan.ISBN)
	if err == ErrBookNotFound {
		return Loan{}, ErrBookUnavailable
	}
	if err != nil {
		return Loan{}, err
	}
	if book.Available() <= 0 {
		return Loan{}, ErrBookUnavailable
	}

	book.LoanedCopies++
	if err = ls.catalog.Save(ctx, book); err != nil {
		return Loan{}, err
	}

	loan.ID = ls.ids.Generate(LoanIDPrefix)
	if err = ls.loans.Add(ctx, loan.ID, loan); err != nil {
		return Loan{}, err
	}
	ls.logger.Info("service: loan created", zap.String("loan.id", loan.ID), zap.String("book.isbn", loan.ISBN), zap.String("loan.student", loan.StudentName))
	return loan, nil
}

// ReturnBook closes the first loan matching (isbn, studentName): the
// loan record goes away, the book's loaned counter drops by one
// (clamped at zero) and exactly one history record is written. When
// the book was deleted in the meantime the loan is still removed but
// no counter update nor history entry happens.
func (ls *LibraryService) ReturnBook(ctx context.Context, isbn, studentName string) error {
	unlock := ls.locker.Acquire(isbn)
	defer unlock()

	loan, err := ls.loans.FindMatch(ctx, isbn, studentName)
	if err != nil {
		return err
	}
	if err = ls.loans.Delete(ctx, loan.ID); err != nil {
		return err
	}

	book, err := ls.catalog.GetOne(ctx, loan.ISBN)
	if err == ErrBookNotFound {
		ls.logger.Warn("service: returned loan for a deleted book", zap.String("loan.id", loan.ID), zap.String("book.isbn", loan.ISBN))
		return nil
	}
	if err != nil {
		return err
	}

	if book.LoanedCopies > 0 {
		book.LoanedCopies--
	}
	if err = ls.catalog.Save(ctx, book); err != nil {
		return err
	}

	record := History{
		ID:               ls.ids.Generate(HistoryIDPrefix),
		ISBN:             loan.ISBN,
		Title:            book.Title,
		StudentName:      loan.StudentName,
		LoanDate:         loan.LoanDate,
		ActualReturnDate: ls.clock.Now().UTC().Format(time.RFC3339),
	}
	if err = ls.history.Append(ctx, record); err != nil {
		return err
	}
	if err = ls.queue.Push(ctx, ReturnsQueue, record); err != nil {
		ls.logger.Error("service: failed to push return to archive queue", zap.String("qid", ReturnsQueue), zap.Error(err))
	}
	ls.logger.Info("service: loan returned", zap.String("loan.id", loan.ID), zap.String("book.isbn", loan.ISBN), zap.String("loan.student", loan.StudentName))
	return nil
}

// ListHistory returns all completed returns in insertion order.
func (ls *LibraryService) ListHistory(ctx context.Context) ([]History, error) {
	records, err := ls.history.GetAll(ctx)
	return records, err
}
