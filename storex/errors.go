package storex

import (
	"net/http"

	"github.com/Abraxas-365/wahax/errx"
)

// Error registry for storex
var (
	storeErrors = errx.NewRegistry("STORE")

	ErrRecordNotFound = storeErrors.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "Record not found")
	ErrDuplicateID = storeErrors.Register("DUPLICATE_ID", errx.TypeConflict,
		http.StatusConflict, "Record with this ID already exists")
	ErrPersistFailed = storeErrors.Register("PERSIST_FAILED", errx.TypeInternal,
		http.StatusInternalServerError, "Failed to persist records")
	ErrLoadFailed = storeErrors.Register("LOAD_FAILED", errx.TypeInternal,
		http.StatusInternalServerError, "Failed to load records")
)

// IsRecordNotFound reports whether an error is a missing-record error
func IsRecordNotFound(err error) bool {
	return errx.IsCode(err, ErrRecordNotFound)
}
