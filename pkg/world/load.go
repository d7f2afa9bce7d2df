package world

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
)

// Load decodes a world from JSON, rejecting unknown fields, and validates it.
// Entity IDs left empty are filled from their map keys, and rooms, items and
// enemies without a name are named after their ID.
func Load(r io.Reader) (*World, error) {
	var w World
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}
	w.fillDefaults()
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadFile reads and validates a world from a JSON file.
func LoadFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open world file: %w", err)
	}
	defer f.Close()

	w, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func (w *World) fillDefaults() {
	for id, r := range w.Rooms {
		if r.ID == "" {
			r.ID = id
		}
		if r.Name == "" {
			r.Name = textfilter.Title(r.ID)
		}
	}
	for id, p := range w.Puzzles {
		if p.ID == "" {
			p.ID = id
		}
	}
	for id, it := range w.Items {
		if it.ID == "" {
			it.ID = id
		}
		if it.Name == "" {
			it.Name = textfilter.Title(it.ID)
		}
	}
	for id, n := range w.NPCs {
		if n.ID == "" {
			n.ID = id
		}
	}
	for id, s := range w.Secrets {
		if s.ID == "" {
			s.ID = id
		}
	}
	for id, e := range w.Enemies {
		if e.ID == "" {
			e.ID = id
		}
		if e.Name == "" {
			e.Name = textfilter.Title(e.ID)
		}
	}
}
