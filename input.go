package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/xurls/v2"
)

const prompt = "Please enter image URL(s) separated by commas: "

// splitURLs splits a comma-separated list of urls, dropping blank entries.
func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// extractURLs returns every http(s) url that appears in the given text.
func extractURLs(text string) []string {
	var urls []string
	for _, u := range xurls.Strict().FindAllString(text, -1) {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			urls = append(urls, u)
		}
	}
	return urls
}

// collectURLs gathers the urls to download, in order: those found in the
// configured input file, then those given as arguments. If neither source is
// configured, it prompts on out and reads one line from in.
func collectURLs(cfg *Config, in io.Reader, out io.Writer) ([]string, error) {
	var urls []string

	if cfg.InputFile != "" {
		var b []byte
		var err error
		if cfg.InputFile == "-" {
			b, err = io.ReadAll(in)
		} else {
			b, err = os.ReadFile(cfg.InputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read url list: %w", err)
		}
		urls = append(urls, extractURLs(string(b))...)
	}

	for _, arg := range cfg.URLs {
		urls = append(urls, splitURLs(arg)...)
	}

	if cfg.InputFile != "" || len(cfg.URLs) > 0 {
		return urls, nil
	}

	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}

	return splitURLs(line), nil
}
