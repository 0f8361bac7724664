package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stripPolicy removes all markup. Script, style and title bodies are
// dropped entirely by bluemonday.
var stripPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

func parseHTML(content []byte) (parsed, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return parsed{}, fmt.Errorf("parse html: %w", err)
	}

	p := parsed{}
	walkHTMLHead(doc, &p)

	text := stripPolicy.SanitizeBytes(content)
	p.text = html.UnescapeString(string(text))
	return p, nil
}

func walkHTMLHead(n *html.Node, p *parsed) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Html:
			if p.language == "" {
				p.language = htmlAttr(n, "lang")
			}
		case atom.Title:
			if p.title == "" && n.FirstChild != nil {
				p.title = strings.TrimSpace(n.FirstChild.Data)
			}
		case atom.Meta:
			readHTMLMeta(n, p)
		case atom.Body:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTMLHead(c, p)
	}
}

func readHTMLMeta(n *html.Node, p *parsed) {
	value := htmlAttr(n, "content")
	if value == "" {
		return
	}
	name := strings.ToLower(htmlAttr(n, "name"))
	if name == "" {
		name = strings.ToLower(htmlAttr(n, "http-equiv"))
	}
	switch name {
	case "author", "dc.creator":
		setIfEmpty(&p.author, value)
	case "keywords":
		setIfEmpty(&p.keywords, value)
	case "date", "dc.date", "dcterms.created":
		setIfEmpty(&p.date, value)
	case "content-language", "language", "dc.language":
		setIfEmpty(&p.language, value)
	case "title", "dc.title":
		setIfEmpty(&p.title, value)
	}
}

func htmlAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
