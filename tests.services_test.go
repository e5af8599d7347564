package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestLibraryService wires a library service against in-memory fakes.
func newTestLibraryService() (*LibraryService, *memCatalog, *memLoans, *memHistory, *memQueue) {
	catalog := newMemCatalog()
	loans := newMemLoans()
	history := newMemHistory()
	queue := newMemQueue()
	ls := NewLibraryService(zap.NewNop(), nil, NewClock(false), NewIDsHandler(), catalog, loans, history, queue)
	return ls.(*LibraryService), catalog, loans, history, queue
}

func mustRow(isbn, title string, qty int, hasQty bool) BookRow {
	return BookRow{ISBN: isbn, Title: title, Quantity: qty, HasQuantity: hasQty}
}

// TestImportBooks_AddNewBook ensures a first-seen isbn creates the book
// with the given quantity as total copies.
func TestImportBooks_AddNewBook(t *testing.T) {
	ls, catalog, _, _, _ := newTestLibraryService()

	report, err := ls.ImportBooks(context.Background(), []BookRow{mustRow("A1", "X", 3, true)})
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Added: 1, Updated: 0, Duplicates: 0}, report)

	book, err := catalog.GetOne(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 0, book.LoanedCopies)
}

// TestImportBooks_MergeWithinBatch ensures repeated isbn rows in one
// batch merge their quantities in input order.
func TestImportBooks_MergeWithinBatch(t *testing.T) {
	ls, catalog, _, _, _ := newTestLibraryService()

	rows := []BookRow{
		mustRow("A1", "X", 2, true),
		mustRow("A1", "X", 3, true),
	}
	report, err := ls.ImportBooks(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Updated)

	book, err := catalog.GetOne(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 5, book.TotalCopies)
}

// TestImportBooks_SkipIncompleteRows ensures rows lacking isbn or title
// are ignored without counting.
func TestImportBooks_SkipIncompleteRows(t *testing.T) {
	ls, _, _, _, _ := newTestLibraryService()

	rows := []BookRow{
		mustRow("", "Untitled", 1, true),
		mustRow("B2", "", 1, true),
	}
	report, err := ls.ImportBooks(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{}, report)
}

// TestImportBooks_MissingQuantityDefaults ensures a row without usable
// quantity creates with one copy and merges zero additional copies.
func TestImportBooks_MissingQuantityDefaults(t *testing.T) {
	ls, catalog, _, _, _ := newTestLibraryService()

	rows := []BookRow{
		mustRow("C3", "Y", 0, false),
		mustRow("C3", "Y", 0, false),
	}
	report, err := ls.ImportBooks(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Updated)

	book, err := catalog.GetOne(context.Background(), "C3")
	require.NoError(t, err)
	assert.Equal(t, 1, book.TotalCopies)
}

// TestImportBooks_CountsDuplicates ensures a duplicate key raised by a
// racing create is tallied without aborting the batch.
func TestImportBooks_CountsDuplicates(t *testing.T) {
	catalog := &MockCatalogStorage{
		GetOneFunc: func(ctx context.Context, isbn string) (Book, error) {
			return Book{}, ErrBookNotFound
		},
		CreateFunc: func(ctx context.Context, book Book) error {
			return ErrDuplicateISBN
		},
	}
	ls := NewLibraryService(zap.NewNop(), nil, NewClock(false), NewIDsHandler(), catalog, newMemLoans(), newMemHistory(), newMemQueue())

	report, err := ls.ImportBooks(context.Background(), []BookRow{mustRow("D4", "Z", 1, true)})
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Duplicates: 1}, report)
}

// TestImportBooks_RowFailureDoesNotAbortBatch ensures a storage failure
// on one row is skipped and later rows still apply.
func TestImportBooks_RowFailureDoesNotAbortBatch(t *testing.T) {
	mem := newMemCatalog()
	catalog := &MockCatalogStorage{
		GetOneFunc: func(ctx context.Context, isbn string) (Book, error) {
			return mem.GetOne(ctx, isbn)
		},
		CreateFunc: func(ctx context.Context, book Book) error {
			if book.ISBN == "BAD" {
				return errors.New("storage failure")
			}
			return mem.Create(ctx, book)
		},
		SaveFunc: func(ctx context.Context, book Book) error {
			return mem.Save(ctx, book)
		},
	}
	ls := NewLibraryService(zap.NewNop(), nil, NewClock(false), NewIDsHandler(), catalog, newMemLoans(), newMemHistory(), newMemQueue())

	rows := []BookRow{
		mustRow("E5", "First", 1, true),
		mustRow("BAD", "Broken", 1, true),
		mustRow("F6", "Last", 1, true),
	}
	report, err := ls.ImportBooks(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Duplicates)
}

// TestAddBook_MergeOnAdd ensures the manual add of a known isbn adds
// copies instead of creating a new record.
func TestAddBook_MergeOnAdd(t *testing.T) {
	ls, catalog, _, _, _ := newTestLibraryService()

	book, err := ls.AddBook(context.Background(), mustRow("A1", "X", 2, true))
	require.NoError(t, err)
	assert.Equal(t, 2, book.TotalCopies)

	book, err = ls.AddBook(context.Background(), mustRow("A1", "X", 3, true))
	require.NoError(t, err)
	assert.Equal(t, 5, book.TotalCopies)

	// a missing quantity merges zero additional copies.
	book, err = ls.AddBook(context.Background(), mustRow("A1", "X", 0, false))
	require.NoError(t, err)
	assert.Equal(t, 5, book.TotalCopies)

	books, err := catalog.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, len(books))
}

// TestLoanBook_Capacity walks the loan scenario until the capacity is
// exhausted and checks no over-loan happens.
func TestLoanBook_Capacity(t *testing.T) {
	ls, catalog, loans, _, _ := newTestLibraryService()
	require.NoError(t, catalog.Create(context.Background(), Book{ISBN: "A1", Title: "X", TotalCopies: 3}))

	for _, student := range []string{"Sam", "Ann", "Lee"} {
		loan, err := ls.LoanBook(context.Background(), Loan{ISBN: "A1", StudentName: student, LoanDate: "2025-09-01"})
		require.NoError(t, err)
		assert.NotEmpty(t, loan.ID)
	}

	book, err := catalog.GetOne(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 3, book.LoanedCopies)

	_, err = ls.LoanBook(context.Background(), Loan{ISBN: "A1", StudentName: "Kim"})
	assert.Equal(t, ErrBookUnavailable, err)

	book, err = catalog.GetOne(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 3, book.LoanedCopies)

	all, err := loans.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, len(all))
}

// TestLoanBook_UnknownBook ensures loaning an unknown isbn is reported
// as unavailable.
func TestLoanBook_UnknownBook(t *testing.T) {
	ls, _, _, _, _ := newTestLibraryService()
	_, err := ls.LoanBook(context.Background(), Loan{ISBN: "NOPE", StudentName: "Sam"})
	assert.Equal(t, ErrBookUnavailable, err)
}

// TestReturnBook_RestoresCapacityAndWritesHistory ensures a return
// drops the loaned counter, removes the loan and appends exactly one
// history record carrying the original loan date.
func TestReturnBook_RestoresCapacityAndWritesHistory(t *testing.T) {
	ls, catalog, loans, history, queue := newTestLibraryService()
	require.NoError(t, catalog.Create(context.Background(), Book{ISBN: "A1", Title: "X", TotalCopies: 3}))

	for _, student := range []string{"Sam", "Ann", "Lee"} {
		_, err := ls.LoanBook(context.Background(), Loan{ISBN: "A1", StudentName: student, LoanDate: "2025-09-01"})
		require.NoError(t, err)
	}

	require.NoError(t, ls.ReturnBook(context.Background(), "A1", "Sam"))

	book, err := catalog.GetOne(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 2, book.LoanedCopies)

	_, err = loans.FindMatch(context.Background(), "A1", "Sam")
	assert.Equal(t, ErrLoanNotFound, err)

	records, err := history.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, len(records))
	assert.Equal(t, "A1", records[0].ISBN)
	assert.Equal(t, "X", records[0].Title)
	assert.Equal(t, "Sam", records[0].StudentName)
	assert.Equal(t, "2025-09-01", records[0].LoanDate)
	assert.NotEmpty(t, records[0].ActualReturnDate)

	// the archive queue received the same record.
	require.Equal(t, 1, len(queue.records))
	assert.Equal(t, records[0].ID, queue.records[0].ID)
}

// TestReturnBook_UnknownLoan ensures returning without a matching loan
// fails with not found and mutates nothing.
func TestReturnBook_UnknownLoan(t *testing.T) {
	ls, catalog, _, history, _ := newTestLibraryService()
	require.NoError(t, catalog.Create(context.Background(), Book{ISBN: "A1", Title: "X", TotalCopies: 1}))

	err := ls.ReturnBook(context.Background(), "A1", "Sam")
	assert.Equal(t, ErrLoanNotFound, err)

	records, err := history.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestReturnBook_BookDeletedMeanwhile ensures the loan still goes away
// when its book no longer exists, without history nor counter update.
func TestReturnBook_BookDeletedMeanwhile(t *testing.T) {
	ls, _, loans, history, _ := newTestLibraryService()
	require.NoError(t, loans.Add(context.Background(), "l:0", Loan{ID: "l:0", ISBN: "GONE", StudentName: "Sam"}))

	require.NoError(t, ls.ReturnBook(context.Background(), "GONE", "Sam"))

	all, err := loans.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	records, err := history.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestDeleteBook_CascadesLoans ensures deleting a book removes its
// outstanding loans without recording returns.
func TestDeleteBook_CascadesLoans(t *testing.T) {
	ls, catalog, loans, history, _ := newTestLibraryService()
	require.NoError(t, catalog.Create(context.Background(), Book{ISBN: "A1", Title: "X", TotalCopies: 2}))
	for _, student := range []string{"Sam", "Ann"} {
		_, err := ls.LoanBook(context.Background(), Loan{ISBN: "A1", StudentName: student})
		require.NoError(t, err)
	}

	require.NoError(t, ls.DeleteBook(context.Background(), "A1"))

	_, err := catalog.GetOne(context.Background(), "A1")
	assert.Equal(t, ErrBookNotFound, err)

	all, err := loans.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	records, err := history.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestDeleteBook_Unknown ensures deleting an unknown isbn fails with
// not found.
func TestDeleteBook_Unknown(t *testing.T) {
	ls, _, _, _, _ := newTestLibraryService()
	assert.Equal(t, ErrBookNotFound, ls.DeleteBook(context.Background(), "NOPE"))
}

// TestUpdateBook ensures edits are applied under the original isbn and
// that the loaned counter is preserved and covered.
func TestUpdateBook(t *testing.T) {
	ls, catalog, _, _, _ := newTestLibraryService()
	require.NoError(t, catalog.Create(context.Background(), Book{ISBN: "A1", Title: "X", TotalCopies: 3, LoanedCopies: 2}))

	t.Run("edit fields", func(t *testing.T) {
		book, err := ls.UpdateBook(context.Background(), "A1", Book{ISBN: "A1", Title: "X2", Subject: "Math", TotalCopies: 4})
		require.NoError(t, err)
		assert.Equal(t, "X2", book.Title)
		assert.Equal(t, 4, book.TotalCopies)
		assert.Equal(t, 2, book.LoanedCopies)
	})

	t.Run("reject totals below loaned", func(t *testing.T) {
		_, err := ls.UpdateBook(context.Background(), "A1", Book{ISBN: "A1", Title: "X2", TotalCopies: 1})
		assert.Equal(t, ErrInsufficientCopies, err)
	})

	t.Run("rename isbn", func(t *testing.T) {
		book, err := ls.UpdateBook(context.Background(), "A1", Book{ISBN: "B1", Title: "X2", TotalCopies: 4})
		require.NoError(t, err)
		assert.Equal(t, "B1", book.ISBN)

		_, err = catalog.GetOne(context.Background(), "A1")
		assert.Equal(t, ErrBookNotFound, err)
	})

	t.Run("unknown isbn", func(t *testing.T) {
		_, err := ls.UpdateBook(context.Background(), "NOPE", Book{ISBN: "NOPE", Title: "X", TotalCopies: 1})
		assert.Equal(t, ErrBookNotFound, err)
	})
}
