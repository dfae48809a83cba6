package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"contact-picker/internal/model"
)

//go:embed seed_contacts.json
var seedContactsJSON []byte

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DuplicateIDError is returned when a contacts directory lists the same id twice.
type DuplicateIDError struct {
	Source string
	IDs    []int
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("store: %s: duplicate contact ids %v", e.Source, e.IDs)
}

type SourceKind string

const (
	SourceSeed   SourceKind = "seed"
	SourceJSON   SourceKind = "json"
	SourceSQLite SourceKind = "sqlite"
)

// SourceKindForPath picks the loader for a contacts path by extension.
func SourceKindForPath(path string) (SourceKind, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SourceSeed, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceJSON, nil
	case ".sqlite", ".sqlite3", ".db":
		return SourceSQLite, nil
	default:
		return "", fmt.Errorf("store: unsupported contacts file %q (expected .json, .sqlite or .db)", path)
	}
}

// LoadContacts loads the contacts directory at path. An empty path returns the built-in seed list.
func LoadContacts(ctx context.Context, path string) ([]model.Contact, error) {
	kind, err := SourceKindForPath(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case SourceJSON:
		return LoadContactsJSON(path)
	case SourceSQLite:
		return LoadContactsSQLite(ctx, path)
	default:
		return SeedContacts()
	}
}

func SeedContacts() ([]model.Contact, error) {
	return decodeContacts("seed", seedContactsJSON)
}

func LoadContactsJSON(path string) ([]model.Contact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeContacts(path, b)
}

func decodeContacts(source string, b []byte) ([]model.Contact, error) {
	var cs []model.Contact
	if err := json.Unmarshal(b, &cs); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", source, err)
	}
	if err := checkUniqueIDs(source, cs); err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []model.Contact{}
	}
	return cs, nil
}

func checkUniqueIDs(source string, cs []model.Contact) error {
	seen := make(map[int]bool, len(cs))
	dupSet := map[int]bool{}
	for _, c := range cs {
		if seen[c.ID] {
			dupSet[c.ID] = true
		}
		seen[c.ID] = true
	}
	if len(dupSet) == 0 {
		return nil
	}
	dups := make([]int, 0, len(dupSet))
	for id := range dupSet {
		dups = append(dups, id)
	}
	sort.Ints(dups)
	return DuplicateIDError{Source: source, IDs: dups}
}

// WriteContactsJSON writes cs as an indented JSON array.
func WriteContactsJSON(path string, cs []model.Contact) error {
	if err := checkUniqueIDs(path, cs); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, append(b, '\n'), 0o644)
}

func FindContact(cs []model.Contact, id int) (model.Contact, error) {
	for _, c := range cs {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Contact{}, NotFoundError{Kind: "contact", ID: fmt.Sprint(id)}
}
