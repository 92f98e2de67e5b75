package constants

import "strings"

// Format identifies one of the canonical document format families the
// pipeline can extract from.
type Format string

const (
	PDF         Format = "PDF"
	WORD        Format = "WORD"
	SPREADSHEET Format = "SPREADSHEET"
	IMAGE       Format = "IMAGE"
)

// Formats holds the allowed format families, in dispatch order.
var Formats = []Format{PDF, WORD, SPREADSHEET, IMAGE}

// extFormats maps normalized file extensions to a format family. Used as the
// dispatch tiebreak when the declared MIME type is ambiguous.
var extFormats = map[string]Format{
	"pdf":  PDF,
	"doc":  WORD,
	"docx": WORD,
	"xls":  SPREADSHEET,
	"xlsx": SPREADSHEET,
	"csv":  SPREADSHEET,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
	"gif":  IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a normalized extension to its format family.
// Returns "" when the extension belongs to none of the canonical families.
func MapExtToFormat(ext string) Format {
	return extFormats[NormalizeExt(ext)]
}
