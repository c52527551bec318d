package download

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/ccollins476ad/imgfetch/fileutil"
	"github.com/ccollins476ad/imgfetch/media"
	"github.com/ccollins476ad/imgfetch/web"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultUserAgent = "imgfetch/1.0 (+https://github.com/ccollins476ad/imgfetch)"
	DefaultTimeout   = 10 * time.Second
)

// Outcome is the terminal state of a single fetch.
type Outcome int

const (
	Failed    Outcome = iota
	Saved             // Written to a new file.
	Duplicate         // Identical content already on disk; nothing written.
	Expanded          // An html page whose embedded images should be fetched.
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Duplicate:
		return "duplicate"
	case Expanded:
		return "expanded"
	default:
		return "failed"
	}
}

// Result describes what happened to a single url.
type Result struct {
	URL         string
	Outcome     Outcome
	ContentType string   // As declared by the server.
	Filename    string   // Candidate filename derived from the url.
	Path        string   // Saved: path of the new file.
	Existing    string   // Duplicate: name of the matching file.
	Embedded    []string // Expanded: image urls found on the page.
	Warnings    []string // Advisory; never stop processing.
	Err         *Error   // Failed: the categorized cause.
}

type Options struct {
	Timeout     time.Duration // Bound on each http fetch. Default: DefaultTimeout
	UserAgent   string        // Default: DefaultUserAgent
	ExpandPages bool          // Fetch images embedded in html pages instead of the page.
	HTTPClient  *http.Client  // Default: a new client
}

// Store downloads images into a single flat directory. It never writes the
// same content twice and never overwrites an existing file.
type Store struct {
	destDir string // constant

	hc          *http.Client
	header      http.Header
	timeout     time.Duration
	expandPages bool
}

func NewStore(destDir string, opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Store{
		destDir: destDir,
		hc:      opts.HTTPClient,
		header: http.Header{
			"User-Agent": []string{opts.UserAgent},
			"Accept":     []string{"image/*"},
		},
		timeout:     opts.Timeout,
		expandPages: opts.ExpandPages,
	}
}

// Fetch downloads the image at url=u and saves it unless identical content
// is already on disk. If page expansion is enabled and u serves an html
// page, nothing is saved; the result lists the page's images instead.
//
// Fetch never returns a nil result and never panics; every failure is
// reported through the result.
func (s *Store) Fetch(ctx context.Context, u string) *Result {
	return s.fetch(ctx, u, s.expandPages)
}

// FetchImage is like Fetch, but never expands html pages.
func (s *Store) FetchImage(ctx context.Context, u string) *Result {
	return s.fetch(ctx, u, false)
}

func (s *Store) fetch(ctx context.Context, u string, expand bool) (res *Result) {
	res = &Result{URL: u}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered panic while fetching %s: %v", u, r)
			res.Outcome = Failed
			res.Err = &Error{
				Kind: KindUnexpected,
				URL:  u,
				Err:  fmt.Errorf("panic: %v", r),
			}
		}
	}()

	fail := func(err error) *Result {
		res.Outcome = Failed
		res.Err = newError(u, err)
		log.WithError(err).Debugf("fetch failed: url=%s kind=%s", u, res.Err.Kind)
		return res
	}

	c, err := s.get(ctx, u)
	if err != nil {
		return fail(err)
	}
	res.ContentType = c.ContentType

	if !media.IsImage(c.ContentType) {
		if expand && isHTML(c.ContentType) {
			links, err := web.PageImageURLs(u, c.Body)
			if err != nil {
				return fail(fmt.Errorf("failed to parse html page: %w", err))
			}
			res.Outcome = Expanded
			res.Embedded = links
			return res
		}

		res.Warnings = append(res.Warnings,
			fmt.Sprintf("url does not appear to serve an image (Content-Type: %s)", c.ContentType))
	}

	res.Filename = CandidateFilename(u, c.ContentType)
	log.Debugf("candidate filename: url=%s filename=%s", u, res.Filename)

	existing, dup, err := fileutil.FindDuplicate(s.destDir, c.Body)
	if err != nil {
		return fail(err)
	}
	if dup {
		res.Outcome = Duplicate
		res.Existing = existing
		return res
	}

	path, err := fileutil.WriteUnique(s.destDir, res.Filename, c.Body)
	if err != nil {
		return fail(err)
	}

	log.Debugf("saved: %s", path)
	res.Outcome = Saved
	res.Path = path
	return res
}

// get retrieves url=u, bounded by the store's timeout.
func (s *Store) get(ctx context.Context, u string) (*Content, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return Get(ctx, s.hc, u, s.header)
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
