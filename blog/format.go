package blog

import (
	"fmt"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
)

// Issue is a deviation of a post from the expected layout
type Issue struct {
	// Line 1-based line of the offending block, 0 for the whole document
	Line    int
	Message string
}

func (i Issue) String() string {
	if i.Line == 0 {
		return i.Message
	}
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

type section struct {
	line    int
	title   string
	hasLink bool
	hasList bool
}

var parser = markdown.New(markdown.HTML(true), markdown.Tables(true))

// CheckFormat reports where the post departs from the layout the editor is asked to enforce:
//
//	## [Title of post](link to project)
//	- Interesting facts
//	- Thoughts on the significance of the project
func CheckFormat(post string) []Issue {
	tokens := parser.Parse([]byte(TrimFence(post)))
	var (
		sections []*section
		current  *section
		inH2     bool
	)
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *markdown.HeadingOpen:
			inH2 = t.HLevel == 2
			if inH2 {
				current = &section{line: t.Map[0] + 1}
				sections = append(sections, current)
			} else if t.HLevel < 2 {
				current = nil
			}
		case *markdown.HeadingClose:
			inH2 = false
		case *markdown.Inline:
			if inH2 && current != nil {
				current.title = strings.TrimSpace(t.Content)
				for _, child := range t.Children {
					if link, ok := child.(*markdown.LinkOpen); ok && link.Href != "" {
						current.hasLink = true
					}
				}
			}
		case *markdown.BulletListOpen:
			if current != nil {
				current.hasList = true
			}
		}
	}
	if len(sections) == 0 {
		return []Issue{{Message: "no level-2 heading, expected one `## [Title](link)` section per project"}}
	}
	var issues []Issue
	for _, s := range sections {
		if !s.hasLink {
			issues = append(issues, Issue{Line: s.line, Message: fmt.Sprintf("heading %q has no link to the project", s.title)})
		}
		if !s.hasList {
			issues = append(issues, Issue{Line: s.line, Message: fmt.Sprintf("section %q has no bullet list", s.title)})
		}
	}
	return issues
}

// TrimFence removes a code fence wrapping the whole post, as models often reply with ```markdown blocks
func TrimFence(post string) string {
	trimmed := strings.TrimSpace(post)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return post
	}
	firstLine := strings.IndexByte(trimmed, '\n')
	if firstLine < 0 {
		return post
	}
	body := strings.TrimSuffix(trimmed[firstLine+1:], "```")
	return strings.TrimSpace(body) + "\n"
}
