package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/fileutil"
	log "github.com/sirupsen/logrus"
)

const defaultDestDir = "Fetched_Images"

// Environment variables that override built-in defaults. Flags override
// these in turn.
const (
	envDestDir   = "IMGFETCH_DIR"
	envTimeout   = "IMGFETCH_TIMEOUT"
	envUserAgent = "IMGFETCH_USER_AGENT"
)

type Config struct {
	URLs        []string      // Positional arguments; each may be a comma-separated list.
	InputFile   string        // File to extract urls from; "-" for stdin.
	DestDir     string        // Directory to save images to.
	Timeout     time.Duration // Bound on each http fetch.
	UserAgent   string        // User-Agent header sent with every request.
	ExpandPages bool          // Fetch the images embedded in html pages.
	Verbose     bool          // True for verbose output.
}

func parseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	fs.StringVar(&cfg.DestDir, "o", getEnv(envDestDir, defaultDestDir), "output directory")
	fs.DurationVar(&cfg.Timeout, "timeout", getDuration(envTimeout, download.DefaultTimeout), "timeout for each download")
	fs.StringVar(&cfg.UserAgent, "user-agent", getEnv(envUserAgent, download.DefaultUserAgent), "user agent header")
	fs.StringVar(&cfg.InputFile, "f", "", "read urls from file (\"-\" for stdin)")
	fs.BoolVar(&cfg.ExpandPages, "pages", false, "download the images embedded in html pages")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")

	fs.Usage = func() { usage(fs) }
	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	cfg.URLs = fs.Args()

	if cfg.DestDir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	if fileutil.FileExists(cfg.DestDir) && !fileutil.IsDir(cfg.DestDir) {
		return nil, fmt.Errorf("output path is not a directory: %s", cfg.DestDir)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive: have=%s", cfg.Timeout)
	}

	return cfg, nil
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: %s [option]... [url[,url]...]...\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(fs.Output(), "Downloads images, skipping any already saved.\n")
	fmt.Fprintf(fs.Output(), "Prompts for urls if none are given.\n")
	fs.PrintDefaults()
}

func getEnv(key string, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("ignoring invalid %s: %q", key, v)
		return def
	}
	return d
}
