package domain

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptionLines caps how many lines of the first paragraph feed a description.
const descriptionLines = 3

var titlePattern = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// Metadata is the display information derived from a prompt body.
type Metadata struct {
	Title       string
	Description string
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ExtractMetadata derives a title and description from markdown text.
// A leading YAML front matter block may set either field explicitly.
func ExtractMetadata(text, fallbackTitle string) Metadata {
	text = strings.ReplaceAll(text, "\r", "")
	fm, body := splitFrontMatter(text)

	meta := Metadata{Title: fallbackTitle}
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			meta.Title = title
		}
	}
	if fm.Title != "" {
		meta.Title = strings.TrimSpace(fm.Title)
	}

	meta.Description = firstParagraph(body)
	if fm.Description != "" {
		meta.Description = strings.TrimSpace(fm.Description)
	}
	if meta.Description == "" {
		meta.Description = meta.Title
	}
	return meta
}

// firstParagraph returns the first blank-line separated block that is not a heading,
// folded onto one line.
func firstParagraph(body string) string {
	var para []string
	flush := func() string {
		if len(para) == 0 {
			return ""
		}
		if strings.HasPrefix(para[0], "#") {
			para = para[:0]
			return ""
		}
		if len(para) > descriptionLines {
			para = para[:descriptionLines]
		}
		return strings.Join(para, " ")
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if desc := flush(); desc != "" {
				return desc
			}
			continue
		}
		para = append(para, trimmed)
	}
	return flush()
}

func splitFrontMatter(text string) (frontMatter, string) {
	var fm frontMatter
	if !strings.HasPrefix(text, "---\n") {
		return fm, text
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, text
	}
	after := rest[end+len("\n---"):]
	if after != "" && after[0] != '\n' {
		return fm, text
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return frontMatter{}, text
	}
	return fm, strings.TrimPrefix(after, "\n")
}
