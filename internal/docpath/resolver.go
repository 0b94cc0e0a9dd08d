// Package docpath derives deterministic storage locations from a
// document's classification code and version number.
package docpath

import (
	"fmt"
	"regexp"
	"strings"

	"sigedoc/internal/domain"
)

// folderByPrefix maps the type prefix of a document code to its storage
// folder. The table is closed; unknown prefixes land in "other".
var folderByPrefix = map[string]string{
	"pr": "procedures",
	"fo": "formats",
	"gu": "guides",
	"in": "instructions",
	"ma": "manuals",
}

const defaultFolder = "other"

// codeSeparator splits the type prefix off a document code like
// "PR-GC-01".
const codeSeparator = "-"

// Path is the derived storage location for one document version. It is
// a value, never stored independently, and fully reproducible from
// (documentCode, versionNumber, originalFileName).
type Path struct {
	Folder        string
	DocumentCode  string
	VersionNumber int
	Extension     string

	// suffix uniquifies the object name after a storage collision.
	// Empty for the deterministic first attempt.
	suffix string
}

// Resolve derives the storage path for a document version. It is pure
// and deterministic: identical inputs always yield an identical path.
//
// A file name without an extension is rejected rather than silently
// producing a malformed path with a trailing dot.
func Resolve(documentCode string, versionNumber int, originalFileName string) (Path, error) {
	if documentCode == "" {
		return Path{}, fmt.Errorf("%w: document code is empty", domain.ErrValidation)
	}
	if versionNumber < 1 {
		return Path{}, fmt.Errorf("%w: version number %d must be >= 1", domain.ErrValidation, versionNumber)
	}

	ext := Extension(originalFileName)
	if ext == "" {
		return Path{}, fmt.Errorf("%w: file name %q has no extension", domain.ErrValidation, originalFileName)
	}

	prefix := documentCode
	if i := strings.Index(documentCode, codeSeparator); i >= 0 {
		prefix = documentCode[:i]
	}
	folder, ok := folderByPrefix[strings.ToLower(prefix)]
	if !ok {
		folder = defaultFolder
	}

	return Path{
		Folder:        folder,
		DocumentCode:  documentCode,
		VersionNumber: versionNumber,
		Extension:     ext,
	}, nil
}

// WithSuffix returns a copy of the path whose object name carries a
// uniquifying suffix, used for the single collision retry.
func (p Path) WithSuffix(suffix string) Path {
	p.suffix = suffix
	return p
}

// ObjectName is the file name of the stored object:
// {code}-v{n}.{ext}, or {code}-v{n}-{suffix}.{ext} after a retry.
func (p Path) ObjectName() string {
	if p.suffix != "" {
		return fmt.Sprintf("%s-v%d-%s.%s", p.DocumentCode, p.VersionNumber, p.suffix, p.Extension)
	}
	return fmt.Sprintf("%s-v%d.%s", p.DocumentCode, p.VersionNumber, p.Extension)
}

// String renders the full object path:
// {folder}/{code}/v{n}/{objectName}.
func (p Path) String() string {
	return fmt.Sprintf("%s/%s/v%d/%s", p.Folder, p.DocumentCode, p.VersionNumber, p.ObjectName())
}

// Extension returns the lower-cased substring after the last dot of a
// file name, or "" when the name carries no extension.
func Extension(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 || i == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[i+1:])
}

// Stem returns the file name without its extension.
func Stem(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return fileName[:i]
	}
	return fileName
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// DownloadName derives the human-readable name a downloaded document is
// served under: {code}_{sanitizedName}_v{version}.{ext}. Every
// character outside [A-Za-z0-9] in the display name becomes "_".
func DownloadName(documentCode, displayName string, versionNumber int, extension string) string {
	sanitized := unsafeNameChars.ReplaceAllString(displayName, "_")
	return fmt.Sprintf("%s_%s_v%d.%s", documentCode, sanitized, versionNumber, extension)
}
