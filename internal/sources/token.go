package sources

import (
	"log/slog"
	"strings"

	"dropwatch/internal/logging"
	"dropwatch/internal/releases"
	"dropwatch/internal/runerr"
)

// TokenKind classifies a token in a source's flattened document stream.
type TokenKind int

const (
	// TokenMarker is a date heading that opens or closes the window.
	TokenMarker TokenKind = iota
	// TokenPair is an entry whose artist and title came from separate cells.
	TokenPair
	// TokenDelimited is an entry carried as a single delimited string.
	TokenDelimited
)

// Token is one element of a source's document stream.
type Token struct {
	Kind   TokenKind
	Text   string
	Artist string
	Title  string
}

// Window bounds the scan: Start opens collection, End terminates it. Both are
// rendered in the source's native date format, one week apart.
type Window struct {
	Start string
	End   string
}

const entryDelimiter = " - "

// Extract scans a token stream in order and collects the mentions between the
// window start marker and the window end marker. Markers matching neither
// bound are ignored, so a source that splits the week into extra headings
// still yields its full window. Malformed entries are skipped with a warning;
// a stream without the start marker or a window without a single valid entry
// fails the whole source.
func Extract(tokens []Token, window Window, source string, logger *slog.Logger) ([]releases.Mention, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var mentions []releases.Mention
	inWindow := false
	windowSeen := false

scan:
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenMarker:
			switch strings.TrimSpace(tok.Text) {
			case window.Start:
				inWindow = true
				windowSeen = true
			case window.End:
				break scan
			}
		case TokenPair:
			if !inWindow {
				continue
			}
			artist := strings.TrimSpace(tok.Artist)
			title := strings.TrimSpace(tok.Title)
			if artist == "" || title == "" {
				logger.Warn("skipping entry with missing fields",
					logging.String(logging.FieldSource, source),
					logging.String("artist", artist),
					logging.String("title", title))
				continue
			}
			mentions = append(mentions, releases.Mention{Artist: artist, Title: title, Source: source})
		case TokenDelimited:
			if !inWindow {
				continue
			}
			artist, title, ok := splitDelimited(tok.Text)
			if !ok {
				logger.Warn("skipping entry with unexpected shape",
					logging.String(logging.FieldSource, source),
					logging.String("entry", strings.TrimSpace(tok.Text)))
				continue
			}
			mentions = append(mentions, releases.Mention{Artist: artist, Title: title, Source: source})
		}
	}

	if !windowSeen {
		return nil, runerr.Wrap(runerr.ErrWindowNotFound, source, "extract", "", nil)
	}
	if len(mentions) == 0 {
		return nil, runerr.Wrap(runerr.ErrNoMentions, source, "extract", "", nil)
	}
	return mentions, nil
}

// splitDelimited parses "Artist - Title - trailing link label" entries. The
// final segment is presentation chrome and is dropped; titles may themselves
// contain the delimiter.
func splitDelimited(text string) (artist, title string, ok bool) {
	segments := strings.Split(strings.TrimSpace(text), entryDelimiter)
	if len(segments) < 3 {
		return "", "", false
	}
	artist = strings.TrimSpace(segments[0])
	title = strings.TrimSpace(strings.Join(segments[1:len(segments)-1], entryDelimiter))
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}
