package report

import (
	"regexp"
	"strings"
)

var (
	sectionHeader = regexp.MustCompile(`^\d+\.\s+[A-Za-z\s]+:`)
	numberPrefix  = regexp.MustCompile(`^\d+\.\s+`)
)

// Section is one titled block of an AI explanation. The leading section
// may have an empty title when text precedes the first header
type Section struct {
	Title      string
	Paragraphs []string
}

// ParseExplanation splits explanation text into sections. Markdown bold
// markers are removed; lines of the form "<n>. <Title>:" open a new section
// and any text after the colon becomes its first paragraph. Blank lines are
// dropped
func ParseExplanation(text string) []Section {
	var sections []Section
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimRight(strings.ReplaceAll(line, "**", ""), "\r")

		if loc := sectionHeader.FindStringIndex(clean); loc != nil {
			title := numberPrefix.ReplaceAllString(clean[:loc[1]], "")
			title = strings.TrimSpace(strings.TrimSuffix(title, ":"))
			sec := Section{Title: title}
			if rest := strings.TrimSpace(clean[loc[1]:]); rest != "" {
				sec.Paragraphs = append(sec.Paragraphs, rest)
			}
			sections = append(sections, sec)
			continue
		}

		body := strings.TrimSpace(clean)
		if body == "" {
			continue
		}
		if len(sections) == 0 {
			sections = append(sections, Section{})
		}
		last := &sections[len(sections)-1]
		last.Paragraphs = append(last.Paragraphs, body)
	}
	return sections
}
