package db

import "errors"

// ErrNotFound is returned when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")
