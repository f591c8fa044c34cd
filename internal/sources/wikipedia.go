package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"dropwatch/internal/dates"
	"dropwatch/internal/logging"
	"dropwatch/internal/releases"
)

// Wikipedia scrapes the yearly album list. Each month has its own table,
// selected by caption; date headings span rows, so the row carrying a date
// heading usually also carries that date's first album.
type Wikipedia struct {
	fetcher *Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewWikipedia creates the wikipedia source.
func NewWikipedia(fetcher *Fetcher, baseURL string, logger *slog.Logger) *Wikipedia {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Wikipedia{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.NewComponentLogger(logger, "wikipedia"),
	}
}

// Name returns the source identifier recorded on mentions.
func (w *Wikipedia) Name() string { return "wikipedia" }

// URL returns the album list page for the target's year.
func (w *Wikipedia) URL(target dates.Target) string {
	return fmt.Sprintf("%s/wiki/List_of_%d_albums", w.baseURL, target.Year())
}

// Window returns the scan bounds in wikipedia's month-day format.
func (w *Wikipedia) Window(target dates.Target) Window {
	return Window{Start: target.Wikipedia(), End: target.AddDays(7).Wikipedia()}
}

// Mentions fetches the album list and extracts the target window's entries.
func (w *Wikipedia) Mentions(ctx context.Context, target dates.Target) ([]releases.Mention, error) {
	doc, err := w.fetcher.Page(ctx, w.URL(target))
	if err != nil {
		return nil, err
	}
	return Extract(w.tokenize(doc, target), w.Window(target), w.Name(), w.logger)
}

// tokenize flattens the rows of every table whose caption names the target's
// month. Tables for other months are skipped entirely.
func (w *Wikipedia) tokenize(doc *html.Node, target dates.Target) []Token {
	monthYear := target.MonthYear()
	var tokens []Token
	for _, table := range findAll(doc, func(n *html.Node) bool { return isElement(n, "table") }) {
		caption := findFirst(table, func(n *html.Node) bool { return isElement(n, "caption") })
		if caption == nil || !strings.HasSuffix(nodeText(caption), monthYear) {
			continue
		}
		for _, row := range findAll(table, func(n *html.Node) bool { return isElement(n, "tr") }) {
			if th := findFirst(row, func(n *html.Node) bool { return isElement(n, "th") }); th != nil {
				tokens = append(tokens, Token{Kind: TokenMarker, Text: nodeText(th)})
			}
			cells := findAll(row, func(n *html.Node) bool { return isElement(n, "td") })
			if len(cells) >= 2 {
				tokens = append(tokens, Token{
					Kind:   TokenPair,
					Artist: nodeText(cells[0]),
					Title:  nodeText(cells[1]),
				})
			}
		}
	}
	return tokens
}
