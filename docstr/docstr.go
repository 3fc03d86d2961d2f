// Package docstr extracts summaries and named sections from the free-text
// documentation attached to processes and groups.
package docstr

import (
	"regexp"
	"strings"
)

// Summary returns the short description of doc: the first non-blank line
// joined with the lines that follow it, up to the first blank line.
// Surrounding whitespace of each line is removed.
func Summary(doc string) string {
	var parts []string

	for line := range strings.Lines(doc) {
		line = strings.TrimSpace(line)

		if line == "" {
			if len(parts) > 0 {
				break
			}

			continue
		}

		parts = append(parts, line)
	}

	return strings.Join(parts, " ")
}

// Item is one entry of a documentation section.
type Item struct {
	Name string
	Hint string
	Desc string
}

// Sections maps a section title ("Input", "Envs", "Args") to its items.
type Sections map[string][]Item

// Item returns the entry named key in section.
func (s Sections) Item(section, key string) (Item, bool) {
	for _, it := range s[section] {
		if it.Name == key {
			return it, true
		}
	}

	return Item{}, false
}

// Desc returns the description of key in section, or def when absent or
// empty.
func (s Sections) Desc(section, key, def string) string {
	if it, ok := s.Item(section, key); ok && it.Desc != "" {
		return it.Desc
	}

	return def
}

var (
	sectionRex = regexp.MustCompile(`^([A-Z][\w ]*):\s*$`)
	itemRex    = regexp.MustCompile(`^([\w.\-]+)\s*(?:\(([^)]*)\))?\s*:\s*(.*)$`)
)

// Parse splits doc into google-style sections:
//
//	Input:
//	    infile (file): The input file.
//	        Continuation lines are indented deeper.
//	Envs:
//	    ncores: Number of cores.
//
// Text outside any section is ignored.
func Parse(doc string) Sections {
	secs := Sections{}

	var (
		section    string
		secIndent  int
		itemIndent = -1
	)

	for line := range strings.Lines(doc) {
		line = strings.TrimRight(line, " \t\r\n")
		text := strings.TrimLeft(line, " \t")
		indent := len(line) - len(text)

		if text == "" {
			continue
		}

		if m := sectionRex.FindStringSubmatch(text); m != nil &&
			(section == "" || indent <= secIndent) {
			section, secIndent, itemIndent = m[1], indent, -1

			continue
		}

		if section == "" {
			continue
		}

		if indent <= secIndent {
			section = ""

			continue
		}

		items := secs[section]

		if itemIndent < 0 || indent <= itemIndent {
			if m := itemRex.FindStringSubmatch(text); m != nil {
				itemIndent = indent
				secs[section] = append(items, Item{
					Name: m[1],
					Hint: strings.TrimSpace(m[2]),
					Desc: m[3],
				})

				continue
			}
		}

		if n := len(items); n > 0 {
			it := &items[n-1]
			it.Desc = strings.TrimSpace(it.Desc + " " + text)
		}
	}

	return secs
}
