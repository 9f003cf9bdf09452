package services

import (
	"regexp"
	"strings"
)

var (
	// keyField matches an internal key field and its value, with an
	// optional trailing separator: "customerKey: 42, ", "**vendorKey**=7".
	keyField = regexp.MustCompile(`\**\b[a-z][A-Za-z0-9]*Key\b\**\s*[:=]\s*[^,;\n)]*(?:[,;][ \t]*)?`)

	emptyParens = regexp.MustCompile(`\(\s*\)`)
	spaceRun    = regexp.MustCompile(` {2,}`)
	bulletLead  = regexp.MustCompile(`^(\s*)(?:[-*•]\s+)?`)

	conclusionStart = regexp.MustCompile(`^(?i)(in summary|in total|in conclusion|overall|to summarize|to summarise|therefore|thus|all in all|total)\b`)
	labelledItem    = regexp.MustCompile(`^\s*[-*•]\s+.*:`)
)

// Sanitize cleans generated answers for display:
//
//   - internal "...Key" fields and their values are removed, and lines
//     left empty by the removal are dropped;
//   - runs of spaces inside a line collapse to one, indentation is kept;
//   - a line with two or more " - " separators, or with one separator and
//     two colon-delimited segments, is split into one bullet per segment;
//   - a blank line is inserted before a concluding sentence that directly
//     follows a labelled list item.
//
// Sanitize is idempotent.
func Sanitize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var out []string
	for _, line := range lines {
		line, ok := stripKeyFields(line)
		if !ok {
			continue
		}
		line = collapseSpaces(line)
		out = append(out, splitSegments(line)...)
	}

	return strings.Join(separateConclusions(out), "\n")
}

// stripKeyFields removes key fields from a line. It reports false when the
// line held nothing but key fields.
func stripKeyFields(line string) (string, bool) {
	if !keyField.MatchString(line) {
		return line, true
	}
	cleaned := line
	for keyField.MatchString(cleaned) {
		cleaned = keyField.ReplaceAllString(cleaned, "")
		cleaned = emptyParens.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimRight(cleaned, " \t,;")

	if strings.Trim(cleaned, "-*• \t") == "" {
		return "", false
	}
	return cleaned, true
}

func collapseSpaces(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	return indent + strings.TrimRight(spaceRun.ReplaceAllString(trimmed, " "), " \t")
}

// splitSegments turns a run-on line into one bullet per segment.
func splitSegments(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.Contains(trimmed, "|") {
		return []string{line}
	}

	lead := bulletLead.FindStringSubmatch(line)
	indent := lead[1]
	body := line[len(lead[0]):]

	var segments []string
	colonSegments := 0
	for _, seg := range strings.Split(body, " - ") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if strings.Contains(seg, ":") {
			colonSegments++
		}
		segments = append(segments, seg)
	}

	separators := strings.Count(body, " - ")
	if separators == 0 || (separators < 2 && colonSegments < 2) || len(segments) < 2 {
		return []string{line}
	}

	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = indent + "- " + seg
	}
	return out
}

func separateConclusions(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && conclusionStart.MatchString(strings.TrimSpace(line)) &&
			labelledItem.MatchString(lines[i-1]) {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return out
}
