package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	banner  = "Welcome to imgfetch\nA tool for collecting images from the web\n"
	closing = "\nAll URLs attempted. Thank you for sharing mindfully."
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// run downloads the urls described by cfg and returns the process exit
// status.
func run(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) int {
	fmt.Fprint(out, banner+"\n")

	urls, err := collectURLs(cfg, in, out)
	if err != nil {
		printFatalError(err)
		return 2
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No URLs provided. Exiting gracefully.")
		return 0
	}

	s := download.NewStore(cfg.DestDir, download.Options{
		Timeout:     cfg.Timeout,
		UserAgent:   cfg.UserAgent,
		ExpandPages: cfg.ExpandPages,
	})

	sum := processURLs(ctx, s, urls, out)
	fmt.Fprintln(out, closing)

	if sum.allFailed() {
		return 4
	}
	return 0
}

func main() {
	// Optional; supplies defaults through the environment.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("failed to load .env file")
	}

	cfg, err := parseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		printFatalError(err)
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, os.Stdin, os.Stdout)
	stop()

	os.Exit(code)
}
