package parser

import (
	"bytes"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"Referent/pkg/textutil"
)

// bodyStrategy is one row of the content-container table. Rows are tried in
// order and the first one yielding more than minLength characters wins.
type bodyStrategy struct {
	label     string
	query     string
	minLength int
}

func defaultBodyStrategies(minLength int) []bodyStrategy {
	return []bodyStrategy{
		{label: "article-tag", query: "article", minLength: minLength},
		{label: "post-class", query: ".post", minLength: minLength},
		{label: "content-class", query: ".content", minLength: minLength},
		{label: "article-content-class", query: ".article-content", minLength: minLength},
		{label: "aria-article", query: `[role="article"]`, minLength: minLength},
		{label: "main-article", query: "main article", minLength: minLength},
		{label: "entry-content-class", query: ".entry-content", minLength: minLength},
		{label: "post-content-class", query: ".post-content", minLength: minLength},
	}
}

// boilerplate is removed from the whole document before the body fallback.
const boilerplate = "script, style, nav, header, footer, aside"

func selectBody(doc *goquery.Document, strategies []bodyStrategy) (string, string, bool) {
	for _, s := range strategies {
		candidate := doc.Find(s.query).First()
		if candidate.Length() == 0 {
			continue
		}
		text := textutil.CollapseWhitespace(candidate.Text())
		if textutil.RuneLen(text) > s.minLength {
			return text, s.label, true
		}
	}
	return "", "", false
}

func readabilityBody(raw []byte, pageURL *url.URL, minLength int) (string, bool) {
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		return "", false
	}
	text := textutil.CollapseWhitespace(article.TextContent)
	if textutil.RuneLen(text) > minLength {
		return text, true
	}
	return "", false
}

// strippedBody mutates doc, so it must run after title and date extraction.
func strippedBody(doc *goquery.Document) string {
	doc.Find(boilerplate).Remove()
	return textutil.CollapseWhitespace(doc.Find("body").Text())
}
