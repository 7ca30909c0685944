package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/clawdeck/internal/state"
)

func writeVaultFile(t *testing.T, root string, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseVault(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "Business/Garden.md", `---
title: Garden redesign
status: active
---

## Objective

Replace the lawn with raised beds.
`)
	writeVaultFile(t, root, "Work/Migration.md", `# Database migration

**Concept:** Move the reporting stack off the legacy cluster

More detail below.
`)
	writeVaultFile(t, root, "Reading list.md", `First paragraph describes the project.

Second paragraph is ignored.
`)
	writeVaultFile(t, root, "README.md", "# ignored\n")
	writeVaultFile(t, root, "Projects.md", "# ignored\n")

	records := ParseVault(root)
	if len(records) != 3 {
		t.Fatalf("parsed %d records, want 3: %+v", len(records), records)
	}

	byName := map[string]Record{}
	for _, r := range records {
		byName[r.Name] = r
	}

	garden, ok := byName["Garden redesign"]
	if !ok {
		t.Fatalf("frontmatter title not used: %v", byName)
	}
	if garden.Color != colorBusiness {
		t.Errorf("Business color = %q", garden.Color)
	}
	if garden.Source != "Business/Garden.md" {
		t.Errorf("source = %q", garden.Source)
	}
	if garden.Description != "Replace the lawn with raised beds." {
		t.Errorf("objective description = %q", garden.Description)
	}

	migration, ok := byName["Database migration"]
	if !ok {
		t.Fatalf("heading title not used: %v", byName)
	}
	if migration.Color != colorWork {
		t.Errorf("Work color = %q", migration.Color)
	}
	if migration.Description != "Move the reporting stack off the legacy cluster" {
		t.Errorf("concept description = %q", migration.Description)
	}

	reading, ok := byName["Reading list"]
	if !ok {
		t.Fatalf("filename title not used: %v", byName)
	}
	if reading.Color != colorPersonal {
		t.Errorf("personal color = %q", reading.Color)
	}
	if reading.Description != "First paragraph describes the project." {
		t.Errorf("paragraph description = %q", reading.Description)
	}
}

func TestParseVaultUnclosedFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "Broken.md", "---\ntitle: never closed\n")

	records := ParseVault(root)
	if len(records) != 1 {
		t.Fatalf("parsed %d records, want 1", len(records))
	}
	// Unclosed frontmatter is treated as body; the filename wins.
	if records[0].Name != "Broken" {
		t.Errorf("name = %q, want filename stem", records[0].Name)
	}
}

func TestStripWikiLinks(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"[[Garden]]", "Garden"},
		{"[[Garden|the garden]]", "the garden"},
		{"see [[A]] and [[B|bee]]", "see A and bee"},
		{"[[unterminated", "[[unterminated"},
	}
	for _, tt := range tests {
		if got := stripWikiLinks(tt.in); got != tt.want {
			t.Errorf("stripWikiLinks(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSync(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "Business/Garden.md", "# Garden redesign\n\nPlan the beds.\n")

	store := state.NewProjectStore(filepath.Join(t.TempDir(), "projects.json"))
	ctx := context.Background()

	result, err := Sync(ctx, store, root)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Created != 1 || result.Updated != 0 || result.Skipped != 0 {
		t.Errorf("first sync = %+v", result)
	}

	// Second pass with no changes: everything skipped.
	result, err = Sync(ctx, store, root)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Skipped != 1 {
		t.Errorf("second sync = %+v", result)
	}
}

func TestSyncMissingDirectory(t *testing.T) {
	store := state.NewProjectStore(filepath.Join(t.TempDir(), "projects.json"))
	if _, err := Sync(context.Background(), store, "/no/such/vault"); err == nil {
		t.Fatal("expected error for missing vault directory")
	}
}
