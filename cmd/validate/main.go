package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.json>...\n", os.Args[0])
		os.Exit(1)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run validates every file and returns the process exit code.
func run(files []string, stdout, stderr io.Writer) int {
	failed := 0
	for _, filename := range files {
		fmt.Fprintf(stdout, "Validating %s...\n", filename)
		validator := &ScenarioValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(stderr, "Validation failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "%s is valid!\n", filename)
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d scenario files failed validation\n", failed, len(files))
		return 1
	}
	return 0
}

type ScenarioValidator struct {
	errors []string
}

func (v *ScenarioValidator) validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("scenario file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidScenarioFilename(nameWithoutExt) {
		return fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., my_manor.json, not my-manor.json or MyManor.json)", baseName)
	}

	v.errors = nil

	// LoadFile decodes strictly and runs the structural checks.
	w, err := world.LoadFile(filename)
	if err != nil {
		var ve *world.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				v.addError(p)
			}
			return v.result(filename)
		}
		return err
	}

	v.validateWorld(w, strings.TrimPrefix(nameWithoutExt, "x."))
	return v.result(filename)
}

func (v *ScenarioValidator) result(filename string) error {
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ScenarioValidator) validateWorld(w *world.World, fileID string) {
	v.validateIDFormat("world ID", w.ID)
	if w.ID != fileID {
		v.addError(fmt.Sprintf("world ID '%s' should match the filename '%s.json'", w.ID, fileID))
	}
	v.validateIDFormat("start_room", w.StartRoom)

	v.validateKeys("room ID", slices.Collect(maps.Keys(w.Rooms)))
	v.validateKeys("puzzle ID", slices.Collect(maps.Keys(w.Puzzles)))
	v.validateKeys("item ID", slices.Collect(maps.Keys(w.Items)))
	v.validateKeys("NPC ID", slices.Collect(maps.Keys(w.NPCs)))
	v.validateKeys("secret ID", slices.Collect(maps.Keys(w.Secrets)))
	v.validateKeys("enemy ID", slices.Collect(maps.Keys(w.Enemies)))
	v.validateKeys("knowledge tag", slices.Collect(maps.Keys(w.Books)))
	v.validateKeys("content unlock tag", slices.Collect(maps.Keys(w.ContentUnlocks)))

	for _, t := range w.Topics {
		v.validateIDFormat("dialogue topic", t.Name)
	}
	for _, id := range slices.Sorted(maps.Keys(w.NPCs)) {
		for _, topic := range slices.Sorted(maps.Keys(w.NPCs[id].Dialogue)) {
			v.validateIDFormat("dialogue topic of "+id, topic)
		}
	}
}

func (v *ScenarioValidator) validateKeys(fieldName string, ids []string) {
	slices.Sort(ids)
	for _, id := range ids {
		v.validateIDFormat(fieldName, id)
	}
}

func (v *ScenarioValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ScenarioValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidScenarioFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenarios
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
