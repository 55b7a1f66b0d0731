package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/exprmig/internal/engine"
	"github.com/aretw0/exprmig/pkg/adapters/file"
	"github.com/aretw0/exprmig/pkg/codec"
	"github.com/aretw0/exprmig/pkg/domain"
)

// Artifact file names. Each is written with the session prefix.
const (
	OccurrencesFile = "legacy_expression_occurrences.json"
	ExpressionsFile = "legacy_expressions_list.json"
	ReplacedFile    = "documents_replaced.json"
	BackupFile      = "documents_backup.json"
	ErrorsFile      = "legacy_expression_errors.json"
)

// SessionID formats the start time of a run. It prefixes the artifacts and keys the backups.
func SessionID(t time.Time) string {
	return t.Format("20060102T150405")
}

// Artifacts holds the paths of the files written for one session.
type Artifacts struct {
	Occurrences string
	Expressions string
	Replaced    string
	Backup      string
	Errors      string
}

// Paths returns the artifact paths in write order.
func (a Artifacts) Paths() []string {
	return []string{a.Occurrences, a.Expressions, a.Replaced, a.Backup, a.Errors}
}

// ErrorRecord is one entry of the errors artifact.
type ErrorRecord struct {
	Kind       string          `json:"kind"`
	DocumentID string          `json:"_id"`
	Expression string          `json:"expression,omitempty"`
	Type       domain.SiteType `json:"type,omitempty"`
	Path       string          `json:"path,omitempty"`
	Message    string          `json:"message"`
}

// Error record kinds.
const (
	KindResolution  = "resolution"
	KindPersistence = "persistence"
	KindTypeChange  = "type_change"
)

// ErrorRecords flattens the recoverable errors and warnings of a result.
func ErrorRecords(res *engine.Result) []ErrorRecord {
	records := []ErrorRecord{}
	for _, e := range res.ResolutionErrors {
		records = append(records, ErrorRecord{
			Kind:       KindResolution,
			DocumentID: e.DocumentID,
			Expression: e.Expression,
			Type:       e.Type,
			Path:       e.Path,
			Message:    e.Error(),
		})
	}
	for _, e := range res.PersistenceErrors {
		records = append(records, ErrorRecord{
			Kind:       KindPersistence,
			DocumentID: e.DocumentID,
			Message:    e.Error(),
		})
	}
	for _, w := range res.Warnings {
		records = append(records, ErrorRecord{
			Kind:       KindTypeChange,
			DocumentID: w.DocumentID,
			Path:       w.Path,
			Message:    w.Error(),
		})
	}
	return records
}

// WriteArtifacts writes the five session artifacts into dir.
// Documents are relaxed Extended JSON; the other files are plain JSON.
func WriteArtifacts(dir, sessionID string, res *engine.Result) (Artifacts, error) {
	prefix := sessionID + "_"
	a := Artifacts{
		Occurrences: filepath.Join(dir, prefix+OccurrencesFile),
		Expressions: filepath.Join(dir, prefix+ExpressionsFile),
		Replaced:    filepath.Join(dir, prefix+ReplacedFile),
		Backup:      filepath.Join(dir, prefix+BackupFile),
		Errors:      filepath.Join(dir, prefix+ErrorsFile),
	}

	occurrences := res.Occurrences
	if occurrences == nil {
		occurrences = []domain.Occurrence{}
	}
	expressions := res.Expressions
	if expressions == nil {
		expressions = []string{}
	}

	if err := writeJSON(a.Occurrences, occurrences); err != nil {
		return a, err
	}
	if err := writeJSON(a.Expressions, expressions); err != nil {
		return a, err
	}
	if err := writeDocuments(a.Replaced, res.Rewritten); err != nil {
		return a, err
	}
	if err := writeDocuments(a.Backup, res.Backups); err != nil {
		return a, err
	}
	if err := writeJSON(a.Errors, ErrorRecords(res)); err != nil {
		return a, err
	}
	return a, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return write(path, data)
}

func writeDocuments(path string, docs []domain.Document) error {
	data, err := codec.MarshalDocuments(docs)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return write(path, data)
}

func write(path string, data []byte) error {
	if err := file.WriteAtomic(filepath.Dir(path), filepath.Base(path), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
