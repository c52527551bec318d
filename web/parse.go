package web

import (
	"bytes"
	"net/url"

	"golang.org/x/net/html"
)

// ForEachNode applies a function to the given node and each of its
// descendants.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	var iter func(n *html.Node) error
	iter = func(n *html.Node) error {
		err := fn(n)
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			err := iter(c)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return iter(node)
}

// NodesWithDataVal returns a slice of all descendant nodes whose "data" field
// has the given value.
func NodesWithDataVal(node *html.Node, dataName string) []*html.Node {
	var nodes []*html.Node

	ForEachNode(node, func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == dataName {
			nodes = append(nodes, n)
		}
		return nil
	})

	return nodes
}

// EmbeddedImageURLs returns the raw src attribute of every img element in the
// given html document, in document order.
func EmbeddedImageURLs(doc *html.Node) []string {
	nodes := NodesWithDataVal(doc, "img")

	var urls []string
	for _, n := range nodes {
		for _, a := range n.Attr {
			if a.Key == "src" {
				urls = append(urls, a.Val)
				break
			}
		}
	}

	return urls
}

// PageImageURLs parses an html page fetched from pageURL and returns the
// absolute urls of the images it embeds. Relative sources are resolved
// against pageURL. Only http and https urls are returned, each at most once.
func PageImageURLs(pageURL string, page []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}

	var urls []string
	for _, src := range EmbeddedImageURLs(doc) {
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		abs.Fragment = ""

		s := abs.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		urls = append(urls, s)
	}

	return urls, nil
}
