// Package corpus reads FAQ entries from the places they are kept.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"faqbot/internal/domain"
)

var _ domain.CorpusSource = (*JSONFile)(nil)

// JSONFile is a corpus stored as a JSON array of {"id","q","a"} objects.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile { return &JSONFile{path: path} }

// Path returns the file location.
func (f *JSONFile) Path() string { return f.path }

// Snapshot reads the whole file.
func (f *JSONFile) Snapshot(ctx context.Context) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer file.Close()
	entries, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return entries, nil
}

// Decode parses a JSON corpus. Question and answer are trimmed; entries
// without an id get one derived from their content so it is stable
// across reloads.
func Decode(r io.Reader) ([]domain.Entry, error) {
	var entries []domain.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := range entries {
		entries[i].Question = strings.TrimSpace(entries[i].Question)
		entries[i].Answer = strings.TrimSpace(entries[i].Answer)
		if entries[i].ID == "" {
			entries[i].ID = ContentID(entries[i])
		}
	}
	return entries, nil
}

// Encode writes entries in the format Decode reads.
func Encode(w io.Writer, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// ContentID derives a deterministic UUID from an entry's text.
func ContentID(e domain.Entry) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("faq:"+e.Question+"\x00"+e.Answer)).String()
}
