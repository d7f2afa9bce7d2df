package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyWorld = `{
	"id": "tiny_house",
	"name": "Tiny House",
	"start_room": "hall",
	"rooms": {
		"hall": {"name": "Hall", "description": "A hall.", "unlocked": true, "horror_level": 1, "atmosphere": "mysterious"}
	}
}`

func writeScenario(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     string
		wantErrs []string
	}{
		{name: "valid", file: "tiny_house.json", data: tinyWorld},
		{name: "experimental prefix", file: "x.tiny_house.json", data: tinyWorld},
		{
			name:     "wrong extension",
			file:     "tiny_house.yaml",
			data:     tinyWorld,
			wantErrs: []string{"must have .json extension"},
		},
		{
			name:     "kebab filename",
			file:     "tiny-house.json",
			data:     tinyWorld,
			wantErrs: []string{"lowercase snake_case"},
		},
		{
			name:     "id does not match filename",
			file:     "other_house.json",
			data:     tinyWorld,
			wantErrs: []string{"should match the filename"},
		},
		{
			name:     "camel case room",
			file:     "tiny_house.json",
			data:     strings.ReplaceAll(tinyWorld, `"hall"`, `"GreatHall"`),
			wantErrs: []string{"room ID 'GreatHall'", "start_room 'GreatHall'"},
		},
		{
			name:     "structural problems are all listed",
			file:     "tiny_house.json",
			data:     strings.Replace(tinyWorld, `"horror_level": 1`, `"horror_level": 11, "connections": ["cellar"]`, 1),
			wantErrs: []string{"horror_level 11", "unknown room \"cellar\""},
		},
		{
			name:     "unknown field",
			file:     "tiny_house.json",
			data:     strings.Replace(tinyWorld, `"name": "Tiny House"`, `"name": "Tiny House", "color": "red"`, 1),
			wantErrs: []string{"unknown field"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &ScenarioValidator{}
			err := v.validateFile(writeScenario(t, tt.file, tt.data))
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErrs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestRun_BuiltinScenarioIsValid(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join("..", "..", "pkg", "content", "data", "blackwood_manor.json")}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "is valid!")
}

func TestRun_ReportsEveryFile(t *testing.T) {
	good := writeScenario(t, "tiny_house.json", tinyWorld)
	bad := writeScenario(t, "broken.json", `{"id": `)

	var stdout, stderr bytes.Buffer
	code := run([]string{good, bad}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "tiny_house.json is valid!")
	assert.Contains(t, stderr.String(), "1 of 2 scenario files failed validation")
}
