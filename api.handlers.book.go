package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// GetAllBooks serves the whole catalog sorted by title.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	books, err := api.library.ListBooks(r.Context())
	if err != nil {
		api.sendError(w, requestID, "failed to get all books", err, EmptyData)
		return
	}
	api.logger.Info("success to get all books", zap.String("request.id", requestID), zap.Int("books.total", len(books)))
	if err = WriteJSON(w, http.StatusOK, books); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateOrMergeBook registers a book. A known isbn gets its total
// copies increased by the submitted quantity instead of a new record.
func (api *APIHandler) CreateOrMergeBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var row BookRow
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &row); err != nil {
		api.sendBadRequest(w, requestID, "failed to register the book", err, EmptyData)
		return
	}

	if row.ISBN == "" || row.Title == "" {
		api.sendBadRequest(w, requestID, "failed to register the book", missingFieldError("isbn and title"), EmptyData)
		return
	}

	book, err := api.library.AddBook(r.Context(), row)
	if err != nil {
		api.sendError(w, requestID, "failed to register the book", err, EmptyData)
		return
	}
	api.logger.Info("success to register book", zap.String("request.id", requestID), zap.String("book.isbn", book.ISBN))
	if err = WriteJSON(w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// ImportBooks merges a bulk of spreadsheet-origin rows into the catalog
// and reports the tallies. Bad rows never abort the batch.
func (api *APIHandler) ImportBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rows []BookRow
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &rows); err != nil {
		api.sendBadRequest(w, requestID, "no rows to import", err, EmptyData)
		return
	}

	report, err := api.library.ImportBooks(r.Context(), rows)
	if err != nil {
		api.sendError(w, requestID, "failed to import the books", err, report)
		return
	}
	api.logger.Info("success to import books",
		zap.String("request.id", requestID),
		zap.Int("import.added", report.Added),
		zap.Int("import.updated", report.Updated),
		zap.Int("import.duplicates", report.Duplicates),
	)
	if err = WriteJSON(w, http.StatusCreated, report); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook replaces the attributes of the book carried by the path
// isbn. The payload may rename the isbn itself.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var book Book
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	isbn := ps.ByName("isbn")
	if err := DecodeRequestBody(r, &book); err != nil {
		api.sendBadRequest(w, requestID, "failed to update the book", err, EmptyData)
		return
	}

	if book.ISBN == "" {
		book.ISBN = isbn
	}
	if err := ValidateBookPayload(&book); err != nil {
		api.sendBadRequest(w, requestID, "failed to update the book", err, err.Error())
		return
	}

	book, err := api.library.UpdateBook(r.Context(), isbn, book)
	if err != nil {
		api.sendError(w, requestID, "failed to update the book", err, EmptyData)
		return
	}
	api.logger.Info("success to update book", zap.String("request.id", requestID), zap.String("book.isbn", book.ISBN))
	if err = WriteJSON(w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteBook removes a book and all its outstanding loans.
func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	isbn := ps.ByName("isbn")
	if err := api.library.DeleteBook(r.Context(), isbn); err != nil {
		api.sendError(w, requestID, "failed to delete the book", err, EmptyData)
		return
	}
	api.logger.Info("success to delete book", zap.String("request.id", requestID), zap.String("book.isbn", isbn))
	if err := WriteJSON(w, http.StatusOK, SuccessResponse{Success: true}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
