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

// Genius scrapes the monthly release calendar annotation page. Date headings
// are bold month/day markers; entries are links whose text is delimited.
type Genius struct {
	fetcher *Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewGenius creates the genius source.
func NewGenius(fetcher *Fetcher, baseURL string, logger *slog.Logger) *Genius {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Genius{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.NewComponentLogger(logger, "genius"),
	}
}

// Name returns the source identifier recorded on mentions.
func (g *Genius) Name() string { return "genius" }

// URL returns the calendar page for the target's month, e.g.
// /Genius-march-2026-album-release-calendar-annotated.
func (g *Genius) URL(target dates.Target) string {
	slug := strings.ToLower(strings.ReplaceAll(target.MonthYear(), " ", "-"))
	return fmt.Sprintf("%s/Genius-%s-album-release-calendar-annotated", g.baseURL, slug)
}

// Window returns the scan bounds in genius's month/day format.
func (g *Genius) Window(target dates.Target) Window {
	return Window{Start: target.Genius(), End: target.AddDays(7).Genius()}
}

// Mentions fetches the calendar and extracts the target window's entries.
func (g *Genius) Mentions(ctx context.Context, target dates.Target) ([]releases.Mention, error) {
	doc, err := g.fetcher.Page(ctx, g.URL(target))
	if err != nil {
		return nil, err
	}
	return Extract(g.tokenize(doc), g.Window(target), g.Name(), g.logger)
}

func (g *Genius) tokenize(doc *html.Node) []Token {
	var tokens []Token
	for _, node := range findAll(doc, func(n *html.Node) bool {
		return isElement(n, "b") || isElement(n, "a")
	}) {
		if node.Data == "b" {
			tokens = append(tokens, Token{Kind: TokenMarker, Text: nodeText(node)})
			continue
		}
		tokens = append(tokens, Token{Kind: TokenDelimited, Text: nodeText(node)})
	}
	return tokens
}
