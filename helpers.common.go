package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

// Stable error taxonomy of the library domain. Handlers map these to
// HTTP statuses; anything else is treated as a storage failure (500).
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrDuplicateISBN      = errors.New("book isbn already exists")
	ErrBookUnavailable    = errors.New("book not available for loan")
	ErrInsufficientCopies = errors.New("total copies lower than loaned copies")
)

type (
	ContextKey        string
	missingFieldError string
	invalidFieldError string
)

const (
	LoanIDPrefix         string     = "l"
	HistoryIDPrefix      string     = "h"
	RequestIDPrefix      string     = "r"
	ContextRequestID     ContextKey = "request.id"
	ContextRequestNumber ContextKey = "request.number"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (m invalidFieldError) Error() string {
	return string(m) + " is invalid"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(ContextRequestNumber); val != nil {
		return val.(uint64)
	}
	return 0
}

// DecodeRequestBody is a helper function to read the json content of a request into v.
func DecodeRequestBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateBookPayload checks if the content of a book creation or update request is usable.
func ValidateBookPayload(book *Book) error {
	if len(strings.TrimSpace(book.ISBN)) == 0 {
		return missingFieldError("isbn")
	}

	if len(strings.TrimSpace(book.Title)) == 0 {
		return missingFieldError("title")
	}

	if book.TotalCopies < 0 {
		return invalidFieldError("totalCopies")
	}

	if book.LoanedCopies < 0 {
		return invalidFieldError("loanedCopies")
	}

	return nil
}

// ValidateLoanPayload checks if the content of a loan creation request is usable.
func ValidateLoanPayload(loan *Loan) error {
	if len(strings.TrimSpace(loan.ISBN)) == 0 {
		return missingFieldError("isbn")
	}

	if len(strings.TrimSpace(loan.StudentName)) == 0 {
		return missingFieldError("studentName")
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
