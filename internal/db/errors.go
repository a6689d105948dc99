package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/surrealdb/surrealdb.go"
)

// ErrTransactionConflict indicates a SurrealDB transaction conflict.
// This occurs when concurrent creates touch the same index entry.
var ErrTransactionConflict = errors.New("transaction conflict")

// wrapQueryError maps a SurrealDB error onto the store's error vocabulary.
// Database-level QueryErrors keep their message; anything else came from the
// transport and is reported as unavailable storage.
func wrapQueryError(op, name string, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if name != "" && (strings.Contains(msg, "already exists") || strings.Contains(msg, "already contains")) {
			return &store.DuplicateNameError{Name: name}
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%s: %w: %s", op, ErrTransactionConflict, msg)
		}
		if strings.Contains(msg, "does not exist") {
			return store.Unavailable(op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return store.Unavailable(op, err)
}
