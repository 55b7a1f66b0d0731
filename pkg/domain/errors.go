package domain

import (
	"errors"
	"fmt"
)

// ErrTranslationRequired is returned when commit mode is requested without a translation table.
var ErrTranslationRequired = errors.New("translation file is required in commit mode")

// ErrTranslationMismatch is returned when the from/to lists of a translation table differ in length.
var ErrTranslationMismatch = errors.New("translation table from/to lists differ in length")

// ErrInvalidLanguagePolicy is returned for an unknown expressionLanguage policy.
var ErrInvalidLanguagePolicy = errors.New("invalid expressionLanguage policy")

// ErrDocumentNotFound is returned by a store when a replace matches no document.
var ErrDocumentNotFound = errors.New("document not found")

// ErrBackupNotFound is returned when a backup set cannot be found in the store.
var ErrBackupNotFound = errors.New("backup not found")

// ErrBackupExists is returned when a session ID already holds a backup set.
var ErrBackupExists = errors.New("backup already exists")

// ResolutionError reports a legacy expression that has no entry in the translation table.
// The site it was found at is left unmodified.
type ResolutionError struct {
	DocumentID string
	Expression string
	Type       SiteType
	Path       string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("expression not found in translation file: %s in document: %s", e.Expression, e.DocumentID)
}

// PersistenceError reports a document the store refused to replace.
type PersistenceError struct {
	DocumentID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to replace document %s: %v", e.DocumentID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TypeChangeWarning records a non-string field that was rewritten to a string replacement.
type TypeChangeWarning struct {
	DocumentID string
	Path       string
	FromType   string
}

func (w *TypeChangeWarning) Error() string {
	return fmt.Sprintf("field %s of document %s changed type from %s to string", w.Path, w.DocumentID, w.FromType)
}
