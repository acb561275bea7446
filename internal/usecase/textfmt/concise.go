package textfmt

import "strings"

const bullet = "- "

// FormatConcise rewrites text as bullets separated by blank lines.
func FormatConcise(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	for _, l := range lines {
		if strings.HasPrefix(l, bullet) {
			return strings.Join(lines, "\n\n")
		}
	}

	parts := lines
	if len(lines) == 1 {
		parts = SplitSentences(lines[0])
	}
	bullets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			bullets = append(bullets, bullet+p)
		}
	}
	return strings.Join(bullets, "\n\n")
}
