package media

import "strings"

const (
	// DefaultExt is used when the server does not declare a content type.
	DefaultExt = ".jpg"

	// BinaryExt is used for declared content types we don't recognize.
	BinaryExt = ".bin"
)

// extensions maps image content types to the extension of saved files.
var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/svg+xml": ".svg",
}

// ExtensionFor returns the filename extension, including the leading dot,
// for the given declared content type. The lookup is an exact match; an
// empty content type means the header was absent.
func ExtensionFor(contentType string) string {
	if contentType == "" {
		return DefaultExt
	}

	ext, ok := extensions[contentType]
	if !ok {
		return BinaryExt
	}
	return ext
}

// IsImage returns true if the declared content type is an image type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
