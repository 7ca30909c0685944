// Package vault imports projects from an Obsidian vault. It scans the
// active-projects tree of the vault and turns each markdown file into a
// project record for upserting into the project store.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/clawdeck/internal/types"
)

// Category colors match the vault's folder conventions.
const (
	colorBusiness = "#059669"
	colorWork     = "#2563eb"
	colorPersonal = "#7c3aed"
)

const maxDescription = 300

// Record is one project parsed from the vault.
type Record struct {
	Name        string
	Description string
	Color       string
	Source      string // vault-relative path, used as the dedup key
}

// ParseVault scans the active-projects directory: Business/ and Work/
// subfolders plus loose top-level markdown files (personal projects).
// Unreadable files are skipped.
func ParseVault(activePath string) []Record {
	var records []Record

	scanDir(filepath.Join(activePath, "Business"), "Business", colorBusiness, &records)
	scanDir(filepath.Join(activePath, "Work"), "Work", colorWork, &records)

	entries, err := os.ReadDir(activePath)
	if err != nil {
		return records
	}
	for _, entry := range entries {
		if entry.IsDir() || !isProjectFile(entry.Name()) {
			continue
		}
		if rec, ok := parseFile(filepath.Join(activePath, entry.Name()), colorPersonal, entry.Name()); ok {
			records = append(records, rec)
		}
	}
	return records
}

func scanDir(dir, category, color string, out *[]Record) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isProjectFile(entry.Name()) {
			continue
		}
		source := category + "/" + entry.Name()
		if rec, ok := parseFile(filepath.Join(dir, entry.Name()), color, source); ok {
			*out = append(*out, rec)
		}
	}
}

func isProjectFile(name string) bool {
	if filepath.Ext(name) != ".md" {
		return false
	}
	return name != "README.md" && name != "Projects.md"
}

func parseFile(path, color, source string) (Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, false
	}
	front, body := splitFrontmatter(string(data))

	name := front["title"]
	if name == "" {
		name = firstHeading(body)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	return Record{
		Name:        stripWikiLinks(name),
		Description: stripWikiLinks(extractDescription(body)),
		Color:       color,
		Source:      source,
	}, true
}

// splitFrontmatter peels a leading YAML frontmatter block off the document.
// Values are flattened to strings; an unclosed or unparseable block is
// treated as no frontmatter.
func splitFrontmatter(content string) (map[string]string, string) {
	front := map[string]string{}
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return front, content
	}
	yamlDoc, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return front, content
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(yamlDoc), &raw); err != nil {
		return front, content
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			front[strings.ToLower(k)] = val
		case int, int64, float64, bool:
			front[strings.ToLower(k)] = fmt.Sprintf("%v", val)
		}
	}
	return front, body
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// extractDescription finds the best short description in the body: the
// objective section, then a **Concept:** line, then the first plain
// paragraph.
func extractDescription(body string) string {
	lines := strings.Split(body, "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "## objective") || strings.HasPrefix(line, "## 🎯") {
			if text := sectionText(lines[i+1:]); text != "" {
				return truncate(text, maxDescription)
			}
		}
	}

	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "**Concept:**"); ok {
			if val := strings.TrimSpace(rest); val != "" {
				return truncate(val, maxDescription)
			}
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || trimmed == "---" {
			continue
		}
		if isMetadataLine(trimmed) {
			continue
		}
		return truncate(trimmed, maxDescription)
	}
	return ""
}

func isMetadataLine(line string) bool {
	for _, prefix := range []string{"**Status:**", "**Owner:**", "**Type:**", "**Created:**"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// sectionText joins the paragraph directly under a heading, stopping at the
// next heading, a rule, or the first blank line after content.
func sectionText(lines []string) string {
	var parts []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") || trimmed == "---" {
			break
		}
		if trimmed == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// stripWikiLinks rewrites [[target|display]] and [[target]] to their
// display text.
func stripWikiLinks(s string) string {
	var sb strings.Builder
	for {
		start := strings.Index(s, "[[")
		if start < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		end := strings.Index(s[start:], "]]")
		if end < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:start])
		link := s[start+2 : start+end]
		if _, display, ok := strings.Cut(link, "|"); ok {
			sb.WriteString(display)
		} else {
			sb.WriteString(link)
		}
		s = s[start+end+2:]
	}
}

// SyncResult summarises one vault sync pass.
type SyncResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
}

// Sync parses the vault and upserts every record into the project store.
// Per-record failures are collected, not fatal.
func Sync(ctx context.Context, store types.ProjectStore, activePath string) (*SyncResult, error) {
	if fi, err := os.Stat(activePath); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("active projects directory not found: %s", activePath)
	}

	result := &SyncResult{}
	for _, rec := range ParseVault(activePath) {
		res, err := store.UpsertBySource(ctx, &types.Project{
			Name:        rec.Name,
			Description: rec.Description,
			Color:       rec.Color,
			AgentID:     "main",
			Source:      rec.Source,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.Name, err))
			continue
		}
		switch res {
		case types.UpsertCreated:
			result.Created++
		case types.UpsertUpdated:
			result.Updated++
		case types.UpsertSkipped:
			result.Skipped++
		}
	}
	return result, nil
}
