// Package content embeds the built-in adventure worlds.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// DefaultWorld is the ID of the world used when none is requested.
const DefaultWorld = "blackwood_manor"

//go:embed data/*.json
var data embed.FS

var (
	loadOnce sync.Once
	worlds   map[string]*world.World
	loadErr  error
)

// Worlds returns every embedded world keyed by ID. Worlds are loaded and
// validated once and shared read-only.
func Worlds() (map[string]*world.World, error) {
	loadOnce.Do(func() {
		worlds, loadErr = loadAll(data)
	})
	return worlds, loadErr
}

// Get returns one embedded world.
func Get(id string) (*world.World, error) {
	all, err := Worlds()
	if err != nil {
		return nil, err
	}
	w, ok := all[id]
	if !ok {
		return nil, &world.NotFoundError{Kind: "world", ID: id}
	}
	return w, nil
}

// BlackwoodManor returns the built-in Blackwood Manor world.
func BlackwoodManor() (*world.World, error) {
	return Get(DefaultWorld)
}

// IDs returns the sorted IDs of the embedded worlds.
func IDs() ([]string, error) {
	all, err := Worlds()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func loadAll(fsys fs.FS) (map[string]*world.World, error) {
	entries, err := fs.ReadDir(fsys, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded worlds: %w", err)
	}
	out := make(map[string]*world.World, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join("data", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		w, err := world.Load(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", e.Name(), err)
		}
		out[w.ID] = w
	}
	return out, nil
}
