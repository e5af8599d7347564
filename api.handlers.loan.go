package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// GetAllLoans serves all outstanding loans.
func (api *APIHandler) GetAllLoans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	loans, err := api.library.ListLoans(r.Context())
	if err != nil {
		api.sendError(w, requestID, "failed to get all loans", err, EmptyData)
		return
	}
	api.logger.Info("success to get all loans", zap.String("request.id", requestID), zap.Int("loans.total", len(loans)))
	if err = WriteJSON(w, http.StatusOK, loans); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateLoan checks one copy out to a student. It answers 400 when the
// book is unknown or has no available copy left.
func (api *APIHandler) CreateLoan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var loan Loan
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &loan); err != nil {
		api.sendBadRequest(w, requestID, "failed to create the loan", err, EmptyData)
		return
	}

	if err := ValidateLoanPayload(&loan); err != nil {
		api.sendBadRequest(w, requestID, "failed to create the loan", err, err.Error())
		return
	}

	loan, err := api.library.LoanBook(r.Context(), loan)
	if err != nil {
		api.sendError(w, requestID, "book not available for loan", err, EmptyData)
		return
	}
	api.logger.Info("success to create loan", zap.String("request.id", requestID), zap.String("loan.id", loan.ID))
	if err = WriteJSON(w, http.StatusCreated, loan); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// ReturnLoan closes the loan matching the posted (isbn, studentName)
// pair and archives it into the history.
func (api *APIHandler) ReturnLoan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var loan Loan
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &loan); err != nil {
		api.sendBadRequest(w, requestID, "failed to return the loan", err, EmptyData)
		return
	}

	if err := ValidateLoanPayload(&loan); err != nil {
		api.sendBadRequest(w, requestID, "failed to return the loan", err, err.Error())
		return
	}

	api.returnLoan(w, r, loan.ISBN, loan.StudentName)
}

// ReturnLoanByPath is the older route variant of ReturnLoan keyed by
// path parameters. Kept for dashboards still calling it.
func (api *APIHandler) ReturnLoanByPath(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.returnLoan(w, r, ps.ByName("isbn"), ps.ByName("studentName"))
}

func (api *APIHandler) returnLoan(w http.ResponseWriter, r *http.Request, isbn, studentName string) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := api.library.ReturnBook(r.Context(), isbn, studentName); err != nil {
		api.sendError(w, requestID, "failed to return the loan", err, EmptyData)
		return
	}
	api.logger.Info("success to return loan", zap.String("request.id", requestID), zap.String("book.isbn", isbn), zap.String("loan.student", studentName))
	if err := WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "book returned successfully"}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetHistory serves all completed returns for audit.
func (api *APIHandler) GetHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	records, err := api.library.ListHistory(r.Context())
	if err != nil {
		api.sendError(w, requestID, "failed to get the history", err, EmptyData)
		return
	}
	api.logger.Info("success to get history", zap.String("request.id", requestID), zap.Int("history.total", len(records)))
	if err = WriteJSON(w, http.StatusOK, records); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
