package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dropwatch/internal/catalog"
	"dropwatch/internal/dates"
	"dropwatch/internal/releases"
)

// Digest is the structured payload of one aggregation run: the target date,
// the deduplicated entities (confirmed and unconfirmed), and any sources that
// failed to contribute.
type Digest struct {
	Target   dates.Target
	Entities []*releases.Entity
	Issues   []SourceIssue
}

// SourceIssue records a source that produced no mentions for the run.
type SourceIssue struct {
	Source string
	Detail string
}

// Empty reports whether the digest carries nothing worth publishing.
func (d *Digest) Empty() bool {
	return d == nil || len(d.Entities) == 0
}

// Confirmed counts entities the catalog resolved to a record.
func (d *Digest) Confirmed() int {
	if d == nil {
		return 0
	}
	count := 0
	for _, entity := range d.Entities {
		if entity.Record != nil {
			count++
		}
	}
	return count
}

// Unconfirmed counts entities left without a catalog record. These are
// rendered with a manual-review flag, never dropped.
func (d *Digest) Unconfirmed() int {
	if d == nil {
		return 0
	}
	return len(d.Entities) - d.Confirmed()
}

// Batch is the structured payload of one monitor pass: newly discovered
// releases grouped per subject in first-seen order.
type Batch struct {
	Groups []SubjectReleases
}

// SubjectReleases holds one subject's new releases.
type SubjectReleases struct {
	Subject  string
	Releases []catalog.Release
}

// Empty reports whether the batch carries no releases.
func (b *Batch) Empty() bool {
	if b == nil {
		return true
	}
	for _, group := range b.Groups {
		if len(group.Releases) > 0 {
			return false
		}
	}
	return true
}

// Size returns the total release count across all groups.
func (b *Batch) Size() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, group := range b.Groups {
		total += len(group.Releases)
	}
	return total
}

// GroupReleases folds a flat release list into per-subject groups, keeping
// both subjects and releases in their discovered order.
func GroupReleases(found []catalog.Release) *Batch {
	batch := &Batch{}
	index := make(map[string]int)
	for _, release := range found {
		pos, ok := index[release.SubjectID]
		if !ok {
			pos = len(batch.Groups)
			index[release.SubjectID] = pos
			batch.Groups = append(batch.Groups, SubjectReleases{Subject: release.SubjectName})
		}
		batch.Groups[pos].Releases = append(batch.Groups[pos].Releases, release)
	}
	return batch
}

var displayCaser = cases.Title(language.Und)

// DisplayName renders a subject name for human-facing output.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	if name == strings.ToLower(name) {
		return displayCaser.String(name)
	}
	return name
}

func renderDigest(d *Digest) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d release(s) announced for %s\n", len(d.Entities), d.Target.Human())

	for _, entity := range d.Entities {
		builder.WriteString("\n")
		if entity.Record == nil {
			fmt.Fprintf(&builder, "%s: %s (unconfirmed, needs manual review)\n",
				DisplayName(entity.Artist), entity.Title)
		} else {
			fmt.Fprintf(&builder, "%s: %s\n", DisplayName(entity.Artist), entity.Record.Name)
			fmt.Fprintf(&builder, "  %d track(s), out %s\n", entity.Record.TrackCount, entity.Record.ReleaseDate)
			if entity.Record.URL != "" {
				fmt.Fprintf(&builder, "  %s\n", entity.Record.URL)
			}
		}
		if entity.Subject != nil {
			if line := renderSubjectLine(entity.Subject); line != "" {
				fmt.Fprintf(&builder, "  %s\n", line)
			}
		}
		if len(entity.Sources) > 0 {
			fmt.Fprintf(&builder, "  via %s\n", strings.Join(entity.Sources, ", "))
		}
	}

	if len(d.Issues) > 0 {
		builder.WriteString("\nSource problems this run:\n")
		for _, issue := range d.Issues {
			fmt.Fprintf(&builder, "  %s: %s\n", issue.Source, issue.Detail)
		}
	}
	return builder.String()
}

func renderSubjectLine(subject *catalog.SubjectRecord) string {
	var parts []string
	if len(subject.Genres) > 0 {
		parts = append(parts, strings.Join(subject.Genres, ", "))
	}
	if subject.Followers > 0 {
		parts = append(parts, fmt.Sprintf("%s followers", formatCount(subject.Followers)))
	}
	if len(subject.TopWorks) > 0 {
		parts = append(parts, "known for "+strings.Join(subject.TopWorks, ", "))
	}
	return strings.Join(parts, " | ")
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func renderBatch(b *Batch) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d new release(s) from tracked artists\n", b.Size())
	for _, group := range b.Groups {
		if len(group.Releases) == 0 {
			continue
		}
		builder.WriteString("\n")
		fmt.Fprintf(&builder, "%s\n", DisplayName(group.Subject))
		for _, release := range group.Releases {
			fmt.Fprintf(&builder, "  %s (%s) out %s\n",
				release.Name, release.Type, release.ReleaseDate.Format("2006-01-02"))
			if release.URL != "" {
				fmt.Fprintf(&builder, "  %s\n", release.URL)
			}
		}
	}
	return builder.String()
}
