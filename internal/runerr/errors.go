package runerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceFormat marks a source whose fetched document no longer matches
	// the expected shape. The whole source is skipped for the run.
	ErrSourceFormat = errors.New("source format error")
	// ErrEntryParse marks a single malformed entry inside an otherwise valid
	// source window. Absorbed locally with a warning.
	ErrEntryParse = errors.New("entry parse error")
	// ErrCatalogLookup marks a failed catalog correlation for one entity or
	// subject. Absorbed per item.
	ErrCatalogLookup = errors.New("catalog lookup error")
	// ErrPersistence marks a failed state flush. Fatal to the pass.
	ErrPersistence = errors.New("persistence error")
	// ErrDelivery marks a failed notification publish. Surfaced without
	// in-run retry.
	ErrDelivery = errors.New("delivery error")
)

// SourceFormat flavors. Both satisfy errors.Is against ErrSourceFormat.
var (
	ErrWindowNotFound = fmt.Errorf("%w: window start marker not found", ErrSourceFormat)
	ErrNoMentions     = fmt.Errorf("%w: window yielded no mentions", ErrSourceFormat)
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the current run rather than
// being absorbed as a per-item warning.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrDelivery)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
