package config

// MaxUploadBytes is the largest file accepted by the upload pipeline.
const MaxUploadBytes = 10 << 20 // 10 MiB

// AllowedExtensions lists the file extensions accepted for controlled
// documents.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
}

// AllowedMimeTypes lists the MIME types accepted for controlled
// documents.
var AllowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

// MaxActaTitleLength bounds acta titles.
const MaxActaTitleLength = 200

// MaxDocumentNameLength bounds document display names.
const MaxDocumentNameLength = 200
