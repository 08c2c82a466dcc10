package domain

import "strings"

const (
	unreleasedHeading = "## [Unreleased]"
	changedSubheading = "### Changed"
	h2Prefix          = "## ["
	bulletPrefix      = "- "
)

// InsertChangelogEntry inserts one or more bullet entries into the
// "## [Unreleased]" / "### Changed" section of a Keep-a-Changelog
// formatted string.
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - If "### Changed" already exists under Unreleased, the entries are
//     appended after the last bullet line in that subsection.
//   - If "### Changed" does not exist, a new subsection is created right
//     after the "## [Unreleased]" line.
func InsertChangelogEntry(content string, entries []string) string {
	if len(entries) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")

	unreleasedIdx := headingIndex(lines, 0, len(lines), unreleasedHeading)
	if unreleasedIdx < 0 {
		return content // no Unreleased section
	}

	// The Unreleased section ends at the next ## [ heading or EOF.
	sectionEnd := nextReleaseHeading(lines, unreleasedIdx)

	changedIdx := headingIndex(lines, unreleasedIdx+1, sectionEnd, changedSubheading)
	if changedIdx >= 0 {
		insertAfter := lastBulletIndex(lines, changedIdx, sectionEnd)
		return strings.Join(spliceLines(lines, insertAfter+1, entries), "\n")
	}

	// No ### Changed subsection yet, create one under ## [Unreleased].
	block := append([]string{"", changedSubheading, ""}, entries...)
	return strings.Join(spliceLines(lines, unreleasedIdx+1, block), "\n")
}

// headingIndex returns the index of the first line in [start, end) whose
// trimmed content equals heading, or -1.
func headingIndex(lines []string, start, end int, heading string) int {
	for i := start; i < end; i++ {
		if strings.TrimSpace(lines[i]) == heading {
			return i
		}
	}
	return -1
}

// nextReleaseHeading returns the index of the next "## [" heading after
// startIdx, or len(lines) if there is none.
func nextReleaseHeading(lines []string, startIdx int) int {
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), h2Prefix) {
			return i
		}
	}
	return len(lines)
}

// lastBulletIndex returns the index of the last bullet line in the
// subsection starting at changedIdx.
func lastBulletIndex(lines []string, changedIdx, endIdx int) int {
	insertAfter := changedIdx
	for i := changedIdx + 1; i < endIdx; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue // blank lines between bullets
		}
		if strings.HasPrefix(trimmed, bulletPrefix) {
			insertAfter = i
			continue
		}
		// Hit a different subsection heading or non-bullet content.
		break
	}
	return insertAfter
}

// spliceLines inserts extra lines into the slice at the given index.
func spliceLines(lines []string, at int, extra []string) []string {
	result := make([]string, 0, len(lines)+len(extra))
	result = append(result, lines[:at]...)
	result = append(result, extra...)
	result = append(result, lines[at:]...)
	return result
}
