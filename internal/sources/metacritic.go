package sources

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"dropwatch/internal/dates"
	"dropwatch/internal/logging"
	"dropwatch/internal/releases"
	"dropwatch/internal/runerr"
)

const metacriticPath = "/browse/albums/release-date/coming-soon/date"

// Metacritic scrapes the coming-soon album calendar. Date headings and album
// rows share one table; album rows carry artist and title in separate cells.
type Metacritic struct {
	fetcher *Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewMetacritic creates the metacritic source.
func NewMetacritic(fetcher *Fetcher, baseURL string, logger *slog.Logger) *Metacritic {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Metacritic{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.NewComponentLogger(logger, "metacritic"),
	}
}

// Name returns the source identifier recorded on mentions.
func (m *Metacritic) Name() string { return "metacritic" }

// URL returns the calendar page URL. The page always serves the upcoming
// window, so the target date only drives the scan markers.
func (m *Metacritic) URL(dates.Target) string {
	return m.baseURL + metacriticPath
}

// Window returns the scan bounds in metacritic's date format.
func (m *Metacritic) Window(target dates.Target) Window {
	return Window{Start: target.Metacritic(), End: target.AddDays(7).Metacritic()}
}

// Mentions fetches the calendar and extracts the target window's entries.
func (m *Metacritic) Mentions(ctx context.Context, target dates.Target) ([]releases.Mention, error) {
	doc, err := m.fetcher.Page(ctx, m.URL(target))
	if err != nil {
		return nil, err
	}
	tokens, err := m.tokenize(doc)
	if err != nil {
		return nil, err
	}
	return Extract(tokens, m.Window(target), m.Name(), m.logger)
}

func (m *Metacritic) tokenize(doc *html.Node) ([]Token, error) {
	table := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "table") && classContains(n, "musicTable")
	})
	if table == nil {
		return nil, runerr.Wrap(runerr.ErrSourceFormat, m.Name(), "tokenize", "release table not found", nil)
	}

	var tokens []Token
	for _, row := range findAll(table, func(n *html.Node) bool { return isElement(n, "tr") }) {
		if th := findFirst(row, func(n *html.Node) bool { return isElement(n, "th") }); th != nil {
			tokens = append(tokens, Token{Kind: TokenMarker, Text: nodeText(th)})
		}
		artistCell := findFirst(row, func(n *html.Node) bool {
			return isElement(n, "td") && classContains(n, "artistName")
		})
		titleCell := findFirst(row, func(n *html.Node) bool {
			return isElement(n, "td") && classContains(n, "albumTitle")
		})
		if artistCell != nil && titleCell != nil {
			tokens = append(tokens, Token{
				Kind:   TokenPair,
				Artist: nodeText(artistCell),
				Title:  nodeText(titleCell),
			})
		}
	}
	return tokens, nil
}
