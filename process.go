package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ccollins476ad/imgfetch/download"
	log "github.com/sirupsen/logrus"
)

// summary tallies the outcomes of a batch. Expanded pages are not counted;
// the images found on them are.
type summary struct {
	Saved      int
	Duplicates int
	Failed     int
}

func (s summary) attempted() int {
	return s.Saved + s.Duplicates + s.Failed
}

// allFailed returns true if at least one url was attempted and none
// succeeded.
func (s summary) allFailed() bool {
	return s.attempted() > 0 && s.Failed == s.attempted()
}

// processURLs downloads each url in turn with processURL(). A failure is
// reported and the batch moves on to the next url.
func processURLs(ctx context.Context, s *download.Store, urls []string, w io.Writer) summary {
	var sum summary

	for _, u := range urls {
		res := processURL(ctx, s.Fetch, u, w, &sum)
		if res.Outcome != download.Expanded {
			continue
		}

		if len(res.Embedded) == 0 {
			fmt.Fprintf(w, "No images found on page: %s\n", u)
			continue
		}

		fmt.Fprintf(w, "Found %d image(s) on page: %s\n", len(res.Embedded), u)
		for _, eu := range res.Embedded {
			processURL(ctx, s.FetchImage, eu, w, &sum)
		}
	}

	fmt.Fprintf(w, "\nDone: saved=%d duplicates=%d failed=%d\n", sum.Saved, sum.Duplicates, sum.Failed)

	return sum
}

// processURL fetches a single url with the given fetch function, reports the
// result to w, and records it in sum.
func processURL(ctx context.Context, fetch func(context.Context, string) *download.Result,
	u string, w io.Writer, sum *summary) *download.Result {

	fmt.Fprintf(w, "\nAttempting to fetch: %s\n", u)

	res := fetch(ctx, u)
	reportResult(w, res)

	switch res.Outcome {
	case download.Saved:
		sum.Saved++
	case download.Duplicate:
		sum.Duplicates++
	case download.Failed:
		sum.Failed++
		log.WithError(res.Err).Debugf("failed to fetch: url=%s", u)
	}

	return res
}

// reportResult writes a human-readable description of res to w.
func reportResult(w io.Writer, res *download.Result) {
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	switch res.Outcome {
	case download.Saved:
		fmt.Fprintf(w, "Successfully fetched: %s\n", res.Filename)
		fmt.Fprintf(w, "Image saved to %s\n", res.Path)

	case download.Duplicate:
		fmt.Fprintf(w, "Duplicate detected! Already saved as: %s\n", res.Existing)

	case download.Failed:
		fmt.Fprintln(w, failureMessage(res.Err))
	}
}

// failureMessage describes a failed download according to its kind.
func failureMessage(err *download.Error) string {
	switch err.Kind {
	case download.KindTimeout:
		return "Connection timed out. Try again later."

	case download.KindConnection:
		return "Could not connect. Check the URL or your network."

	case download.KindStatus:
		var statusErr *download.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("Server responded with error: %s", statusErr.Status)
		}
		return fmt.Sprintf("Server responded with error: %v", err.Err)

	case download.KindNetwork:
		return fmt.Sprintf("Network-related error: %v", err.Err)

	case download.KindPermission:
		return "Permission denied: cannot write to directory."

	case download.KindDisk:
		return fmt.Sprintf("Failed to save image: %v", err.Err)

	case download.KindDirectoryAccess:
		return fmt.Sprintf("Cannot read output directory: %v", err.Err)

	default:
		return fmt.Sprintf("Unexpected error: %v", err.Err)
	}
}
