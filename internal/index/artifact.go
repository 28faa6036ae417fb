package index

import (
	"fmt"
	"time"

	"faqbot/internal/domain"
	"faqbot/internal/embedding/tfidf"
)

// Artifact is the serializable form of a Generation.
type Artifact struct {
	Version   uint64          `json:"version"`
	BuiltAt   time.Time       `json:"built_at"`
	Settings  Settings        `json:"settings"`
	Documents int             `json:"documents"`
	Terms     []tfidf.Term    `json:"terms"`
	Entries   []ArtifactEntry `json:"entries"`
}

// ArtifactEntry is one corpus entry with its document vector.
type ArtifactEntry struct {
	domain.Entry
	Vector tfidf.Vector `json:"vector"`
}

// Artifact returns a serializable copy of the generation.
func (g *Generation) Artifact() *Artifact {
	vocab := g.encoder.Vocabulary()
	a := &Artifact{
		Version:   g.version,
		BuiltAt:   g.builtAt,
		Settings:  g.settings,
		Documents: vocab.Documents(),
		Terms:     vocab.Terms(),
		Entries:   make([]ArtifactEntry, len(g.entries)),
	}
	for i := range g.entries {
		a.Entries[i] = ArtifactEntry{Entry: g.entries[i], Vector: g.vectors[i]}
	}
	return a
}

// FromArtifact reconstructs a generation and checks its consistency.
func FromArtifact(a *Artifact) (*Generation, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrArtifactCorrupt)
	}
	if err := a.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if a.Documents != len(a.Entries) {
		return nil, fmt.Errorf("%w: vocabulary built from %d documents, artifact has %d entries",
			ErrArtifactCorrupt, a.Documents, len(a.Entries))
	}
	vocab, err := tfidf.NewVocabulary(a.Documents, a.Terms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	g := &Generation{
		version:  a.Version,
		builtAt:  a.BuiltAt,
		settings: a.Settings,
		encoder:  tfidf.NewEncoder(tfidf.NewAnalyzer(a.Settings.Config), vocab, a.Settings.SublinearTF),
		entries:  make([]domain.Entry, len(a.Entries)),
		vectors:  make([]tfidf.Vector, len(a.Entries)),
	}
	for i, e := range a.Entries {
		g.entries[i] = e.Entry
		g.vectors[i] = e.Vector
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	return g, nil
}
