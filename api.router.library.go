package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupLibraryRoutes injects catalog, loans and history api endpoints.
func (api *APIHandler) SetupLibraryRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.GET("/api/books", m.public(api.GetAllBooks))
	router.POST("/api/books", m.public(api.CreateOrMergeBook))
	router.POST("/api/books/import", m.public(api.ImportBooks))
	router.PUT("/api/books/:isbn", m.public(api.UpdateBook))
	router.DELETE("/api/books/:isbn", m.public(api.DeleteBook))

	router.GET("/api/loans", m.public(api.GetAllLoans))
	router.POST("/api/loans", m.public(api.CreateLoan))
	router.POST("/api/loans/return", m.public(api.ReturnLoan))
	// older dashboards return a loan through a path-based delete.
	router.DELETE("/api/loans/:isbn/:studentName", m.public(api.ReturnLoanByPath))

	router.GET("/api/history", m.public(api.GetHistory))
	return router
}
