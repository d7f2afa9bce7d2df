package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// Summary is the listing entry for one world.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rooms int    `json:"rooms"`
}

// Catalog is the set of worlds a server can start sessions in: the embedded
// worlds plus any found in a data directory.
type Catalog struct {
	worlds map[string]*world.World
}

// NewCatalog loads the embedded worlds and every *.json file under dataDir.
// An empty dataDir means embedded worlds only. A world file that fails to
// load is an error; a server should not start with a broken scenario.
func NewCatalog(dataDir string, logger *slog.Logger) (*Catalog, error) {
	builtin, err := Worlds()
	if err != nil {
		return nil, err
	}
	c := &Catalog{worlds: maps.Clone(builtin)}
	if dataDir == "" {
		return c, nil
	}

	err = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		w, err := world.LoadFile(path)
		if err != nil {
			return err
		}
		if _, dup := c.worlds[w.ID]; dup {
			return fmt.Errorf("world %s in %s is already defined", w.ID, path)
		}
		c.worlds[w.ID] = w
		if logger != nil {
			logger.Info("Loaded world", "id", w.ID, "path", path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load worlds from %s: %w", dataDir, err)
	}
	return c, nil
}

// Get returns a world by ID. An empty ID means the default world.
func (c *Catalog) Get(id string) (*world.World, error) {
	if id == "" {
		id = DefaultWorld
	}
	w, ok := c.worlds[id]
	if !ok {
		return nil, &world.NotFoundError{Kind: "world", ID: id}
	}
	return w, nil
}

// List returns summaries sorted by ID.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.worlds))
	for _, id := range slices.Sorted(maps.Keys(c.worlds)) {
		w := c.worlds[id]
		out = append(out, Summary{ID: w.ID, Name: w.Name, Rooms: len(w.Rooms)})
	}
	return out
}
