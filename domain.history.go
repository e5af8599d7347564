package main

import "context"

// History is a closed loan kept for audit. It is written exactly once
// when a copy comes back and is never mutated or deleted afterwards.
// The title is copied from the book at return time so the record stays
// meaningful even if the book is later removed from the catalog.
type History struct {
	ID               string `json:"id"`
	ISBN             string `json:"isbn"`
	Title            string `json:"title"`
	StudentName      string `json:"studentName"`
	LoanDate         string `json:"loanDate"`
	ActualReturnDate string `json:"actualReturnDate"`
}

// HistoryStorage defines possible operations on the returns history.
type HistoryStorage interface {
	Append(ctx context.Context, record History) error
	GetAll(ctx context.Context) ([]History, error)
}
