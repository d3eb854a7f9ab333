package card

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/thereceipt/titlecard-engine/internal/failure"
)

// Registry maps variant identifiers and aliases to renderers
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	order  []Renderer
}

// NewRegistry validates and registers renderers. Any invalid metadata is
// a configuration error.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer)}
	for _, rd := range renderers {
		if err := r.Register(rd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry registers every built-in variant
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(
		NewStandard(),
		NewRomanNumeral(),
		NewDivider(),
		NewOlivier(),
		NewTintedGlass(),
		NewFrame(),
		NewCutout(),
		NewLandscape(),
		NewFade(),
		NewStarWars(),
	)
}

// Register validates rd's metadata and adds it
func (r *Registry) Register(rd Renderer) error {
	meta := rd.Metadata()
	if err := ValidateMetadata(meta); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := meta.Names()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := r.byName[key]; exists || seen[key] {
			return failure.New(failure.KindConfiguration, "variant %s: duplicate identifier %q", meta.Identifier, name)
		}
		seen[key] = true
	}
	for _, name := range names {
		r.byName[strings.ToLower(name)] = rd
	}
	r.order = append(r.order, rd)
	return nil
}

// Get looks up a variant by identifier or alias, ignoring case
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, failure.New(failure.KindValidation, "unknown card variant %q", name)
	}
	return rd, nil
}

// List returns the metadata of every registered variant, sorted by identifier
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.order))
	for _, rd := range r.order {
		out = append(out, rd.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// ValidateMetadata checks the metadata a variant declares
func ValidateMetadata(m Metadata) error {
	if err := validateMetadata(m); err != nil {
		id := m.Identifier
		if id == "" {
			id = "<unnamed>"
		}
		return failure.Wrap(failure.KindConfiguration, fmt.Errorf("variant %s: %w", id, err))
	}
	return nil
}

func validateMetadata(m Metadata) error {
	if strings.TrimSpace(m.Identifier) == "" {
		return fmt.Errorf("identifier is required")
	}
	for _, alias := range m.Aliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("empty alias")
		}
	}
	if strings.TrimSpace(m.ArchiveName) == "" {
		return fmt.Errorf("archive name is required")
	}

	split := m.TitleSplit
	if split.MaxLineWidth <= 0 {
		return fmt.Errorf("title split max line width must be positive, got %d", split.MaxLineWidth)
	}
	if split.MaxLineCount <= 0 {
		return fmt.Errorf("title split max line count must be positive, got %d", split.MaxLineCount)
	}
	switch split.Wrap {
	case WrapTop, WrapBottom, WrapEven, WrapForcedEven:
	default:
		return fmt.Errorf("unknown title wrap style %q", split.Wrap)
	}

	switch m.FontCase {
	case CaseBlank, CaseLower, CaseSource, CaseTitle, CaseUpper:
	default:
		return fmt.Errorf("unknown font case %q", m.FontCase)
	}

	for key := range m.FontReplacements {
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("font replacement key %q must be a single character", key)
		}
	}
	return nil
}
