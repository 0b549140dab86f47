// Package seed populates a tree from a declarative definition.
//
// A definition is a YAML or JSON list of files, each naming a path relative to
// the base it is applied to and the source of its content:
//
//	# tree.yaml
//	- path: project/.externals
//	  source: {type: inline, content: "marker"}
//	- path: project/LICENSE
//	  source: {type: file, path: /usr/share/common-licenses/MIT}
//
// Directories are implied by the files beneath them. Paths with "." or ".."
// segments are rejected so a definition cannot write outside its base.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/internal/util"
)

// EntryDTO is the serialized form of an [Entry]
type EntryDTO struct {
	Path   string          `json:"path"`
	Source json.RawMessage `json:"source"`
}

// Entry is one file to create
type Entry struct {
	Path   string
	Source Source
}

// Parse decodes a definition. YAML is a superset of JSON, so both are accepted.
func Parse(data []byte, reg *Registry) ([]Entry, error) {
	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed definition: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for i, doc := range docs {
		// round trip through JSON so sources only deal with one encoding
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		var dto EntryDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if !externals.IsValidName(dto.Path) {
			return nil, &externals.PathError{Op: "seed", Path: dto.Path, Err: externals.ErrInvalidName}
		}
		if len(dto.Source) == 0 {
			return nil, fmt.Errorf("entry %d (%s): missing source", i, dto.Path)
		}
		src, err := reg.Decode(dto.Source)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, dto.Path, err)
		}
		entries = append(entries, Entry{Path: dto.Path, Source: src})
	}
	return entries, nil
}

// Load reads and parses the definition file at path
func Load(path string, reg *Registry) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, reg)
}

// Apply writes every entry beneath base, in order. Later entries for the same
// path replace earlier ones. It stops at the first failure; an entry whose path
// is empty or has dot segments fails with [externals.ErrInvalidName].
func Apply(ctx context.Context, base externals.Path, entries []Entry) error {
	logger := util.GetLogger("Seed")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !externals.IsValidName(entry.Path) {
			return &externals.PathError{Op: "seed", Path: entry.Path, Err: externals.ErrInvalidName}
		}
		target := base.Child(entry.Path)
		if err := write(ctx, target, entry.Source); err != nil {
			return fmt.Errorf("seed %s: %w", target.String(), err)
		}
		logger.Debug().Str("path", target.String()).Msg("Seeded file")
	}
	logger.Info().Int("files", len(entries)).Str("base", base.String()).Msg("Seed applied")
	return nil
}

func write(ctx context.Context, target externals.Path, src Source) error {
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	// the whole source is read before anything is written
	return target.SetContent(data)
}
