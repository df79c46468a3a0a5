package scrape

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// skipped elements never contribute to page content
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"form": true, "svg": true, "template": true,
}

// block elements end a line of extracted text
var block = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"li": true, "ul": true, "ol": true, "br": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// document is the metadata and main text of a parsed page
type document struct {
	Title       string
	Description string
	Language    string
	Content     string
}

// extractDocument parses htmlContent and pulls out title, description,
// language and the main readable text. <main> or <article> is preferred
// over the whole <body> when present.
func extractDocument(htmlContent string) (document, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return document{}, err
	}

	var doc document
	var body, main *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				doc.Language = attr(n, "lang")
			case "title":
				if doc.Title == "" {
					doc.Title = collapse(textOf(n))
				}
			case "meta":
				name := strings.ToLower(attr(n, "name") + attr(n, "property"))
				if (name == "description" || name == "og:description") && doc.Description == "" {
					doc.Description = collapse(attr(n, "content"))
				}
			case "body":
				body = n
			case "main", "article":
				if main == nil {
					main = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	content := main
	if content == nil {
		content = body
	}
	if content != nil {
		doc.Content = readableText(content)
	}

	return doc, nil
}

// readableText renders visible text with one line per block element
func readableText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			if text := collapse(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && block[n.Data] {
			buf.WriteString("\n")
		}
	}
	walk(n)

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		} else {
			buf.WriteString(textOf(c))
		}
	}
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// collapse folds runs of whitespace into single spaces
func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// truncate cuts s to at most limit runes
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
