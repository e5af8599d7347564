package main

import "context"

// Loan is an open borrowing record for exactly one copy of a book.
// There is no uniqueness constraint on (isbn, studentName): the same
// student may hold several copies of the same title at once. A return
// closes a single matching record per call.
type Loan struct {
	ID          string `json:"id"`
	ISBN        string `json:"isbn" binding:"required"`
	StudentName string `json:"studentName" binding:"required"`
	LoanDate    string `json:"loanDate"`
	ReturnDate  string `json:"returnDate"`
}

// LoanStorage defines possible operations on the loans ledger.
type LoanStorage interface {
	Add(ctx context.Context, id string, loan Loan) error
	FindMatch(ctx context.Context, isbn, studentName string) (Loan, error)
	Delete(ctx context.Context, id string) error
	DeleteByISBN(ctx context.Context, isbn string) (int, error)
	GetAll(ctx context.Context) ([]Loan, error)
}
