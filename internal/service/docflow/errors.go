package docflow

import "fmt"

// Kind classifies a pipeline failure for callers and operators.
type Kind string

const (
	KindInvalidFileType      Kind = "invalid_file_type"
	KindFileTooLarge         Kind = "file_too_large"
	KindCodeGenerationFailed Kind = "code_generation_failed"
	KindStorageConflict      Kind = "storage_conflict"
	KindStorageUnavailable   Kind = "storage_unavailable"
	KindDatabaseWriteFailed  Kind = "database_write_failed"
	KindNotFound             Kind = "not_found"
)

// PipelineError is the structured failure every pipeline operation
// resolves to; nothing propagates past the pipeline boundary as an
// uncaught fault.
//
// StorageCommitted distinguishes "nothing happened" from "storage
// succeeded, record failed": when true the uploaded object exists at
// FilePath but no DocumentVersion references it, and an operator must
// reconcile manually.
type PipelineError struct {
	Kind             Kind
	Message          string
	StorageCommitted bool
	FilePath         string
	Err              error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func failure(kind Kind, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
