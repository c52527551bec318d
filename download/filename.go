package download

import (
	"net/url"
	"strings"

	"github.com/ccollins476ad/imgfetch/fileutil"
	"github.com/ccollins476ad/imgfetch/media"
	"github.com/flytam/filenamify"
)

// PlaceholderName is the base name used for URLs that don't end in a usable
// filename.
const PlaceholderName = "downloaded_image"

// URLToFilename returns the base filename for the given url: the final
// segment of its path, unescaped and made safe for use as a filename. An
// escaped slash belongs to the segment it appears in. Names longer than
// fileutil.MaxNameLen lose the end of their base, never their extension.
// It returns PlaceholderName (which has no extension) if the segment is
// empty or lacks an extension. It never fails; a url that doesn't parse is
// treated as a bare path.
func URLToFilename(u string) string {
	p := u
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.EscapedPath()
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	seg := p[strings.LastIndex(p, "/")+1:]
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	if !strings.Contains(seg, ".") || strings.Trim(seg, ".") == "" {
		return PlaceholderName
	}

	// Let filenamify sanitise without truncating; the length limit is
	// applied below so that it can spare the extension.
	name, err := filenamify.Filenamify(seg, filenamify.Options{
		Replacement: "_",
		MaxLength:   len(seg) + 8,
	})
	if err != nil {
		return PlaceholderName
	}

	name = fileutil.TruncateName(name, fileutil.MaxNameLen)
	if !strings.Contains(name, ".") || strings.Trim(name, ".") == "" {
		return PlaceholderName
	}

	return name
}

// CandidateFilename returns the filename under which the content of url=u
// should be saved, given the content type the server declared. The
// extension is inferred from the content type when the url doesn't supply
// one.
func CandidateFilename(u string, contentType string) string {
	filename := URLToFilename(u)
	if !strings.Contains(filename, ".") {
		filename += media.ExtensionFor(contentType)
	}
	return filename
}
