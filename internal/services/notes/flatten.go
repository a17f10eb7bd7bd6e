package notes

import (
	"sort"
	"strings"
)

// legacyAuthor is the attribution used for legacy flattened text that carries
// no "Author:" prefix at all. It only ever appears on the read side; write
// attribution always comes from the captured coach identity.
const legacyAuthor = "Coach"

// FormatFlattened renders the structured map as the backward-compatible
// flattened string: one "<author>: <text>" block per author, blank line
// separated, authors in sorted order so the output is deterministic. Empty
// entries are skipped.
func FormatFlattened(byCoach map[string]string) string {
	authors := make([]string, 0, len(byCoach))
	for a := range byCoach {
		if strings.TrimSpace(byCoach[a]) == "" {
			continue
		}
		authors = append(authors, a)
	}
	sort.Strings(authors)

	var b strings.Builder
	for _, a := range authors {
		b.WriteString(a)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(byCoach[a]))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), " \t\n")
}

// ParseFlattened reconstructs the per-author map from a flattened string.
//
// The heuristic is line-based: a paragraph whose first line starts with
// "Name:" opens that author's block, and paragraphs without such a prefix
// continue the current author. It is deliberately lenient: author names
// containing a colon, or note lines that themselves start with "Word:", are
// ambiguous and parse on a best-effort basis. Production data written by the
// current scheme always round-trips because FormatFlattened emits exactly
// this shape.
func ParseFlattened(flat string) map[string]string {
	byCoach := map[string]string{}
	flat = strings.TrimSpace(strings.ReplaceAll(flat, "\r\n", "\n"))
	if flat == "" {
		return byCoach
	}

	current := ""
	var buf []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = nil
		if text == "" {
			return
		}
		author := current
		if author == "" {
			author = legacyAuthor
		}
		if prev := byCoach[author]; prev != "" {
			text = prev + "\n\n" + text
		}
		byCoach[author] = text
	}

	for _, para := range strings.Split(flat, "\n\n") {
		lines := strings.Split(para, "\n")
		if name, rest, ok := splitAuthorHeader(lines[0]); ok {
			flush()
			current = name
			buf = append(buf, rest)
			buf = append(buf, lines[1:]...)
			continue
		}
		// No author prefix: this paragraph continues the current block.
		if len(buf) > 0 {
			buf = append(buf, "")
		}
		buf = append(buf, lines...)
	}
	flush()

	return byCoach
}

// splitAuthorHeader splits "Name: text" into its parts. The name is
// everything before the first colon; it must be non-empty after trimming.
func splitAuthorHeader(line string) (name, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:idx])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(line[idx+1:]), true
}
