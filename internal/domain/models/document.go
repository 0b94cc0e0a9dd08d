package models

import "time"

// Document is a controlled document (procedure, format, guide, manual).
// Code is globally unique, assigned exactly once at creation by the
// store's code-generation function and never re-derived afterwards.
type Document struct {
	ID                string    `json:"id" db:"id"`
	Code              string    `json:"code" db:"code"`
	Name              string    `json:"name" db:"name"`
	Objective         string    `json:"objective" db:"objective"`
	Scope             string    `json:"scope" db:"scope"`
	TypeID            string    `json:"document_type_id" db:"document_type_id"`
	ProcessID         string    `json:"process_id" db:"process_id"`
	ResponsibleUserID string    `json:"responsible_user_id" db:"responsible_user_id"`
	CreatedBy         string    `json:"created_by" db:"created_by"`
	Status            Status    `json:"status" db:"status"`
	CurrentVersion    int       `json:"current_version" db:"current_version"`
	FilePath          string    `json:"file_path" db:"file_path"`
	FileName          string    `json:"file_name" db:"file_name"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentVersion is one stored revision of a document. Version numbers
// are strictly increasing per document, never reused, and a version is
// immutable once created.
type DocumentVersion struct {
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	FilePath      string    `json:"file_path" db:"file_path"`
	FileName      string    `json:"file_name" db:"file_name"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	MimeType      string    `json:"mime_type" db:"mime_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DocumentListResponse wraps a document listing for the HTTP surface.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}
