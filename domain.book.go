package main

import "context"

// Book represents a catalog entry for one title. TotalCopies counts all
// physical units owned and LoanedCopies the units currently checked out,
// so 0 <= LoanedCopies <= TotalCopies must hold after every operation.
type Book struct {
	ISBN         string `json:"isbn" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Subject      string `json:"subject"`
	Level        string `json:"level"`
	Language     string `json:"language"`
	CornerName   string `json:"cornerName"`
	CornerNumber string `json:"cornerNumber"`
	TotalCopies  int    `json:"totalCopies"`
	LoanedCopies int    `json:"loanedCopies"`
}

// Available tells how many copies can still be loaned out.
func (b Book) Available() int {
	return b.TotalCopies - b.LoanedCopies
}

// CatalogStorage defines possible operations on the books catalog.
// Create must fail with ErrDuplicateISBN when the isbn already exists.
type CatalogStorage interface {
	Create(ctx context.Context, book Book) error
	GetOne(ctx context.Context, isbn string) (Book, error)
	Save(ctx context.Context, book Book) error
	Delete(ctx context.Context, isbn string) error
	GetAll(ctx context.Context) ([]Book, error)
}
