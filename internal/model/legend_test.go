package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = map[string]string{
	"forest": "#228b22",
	"water":  "#1e90ff",
	"urban":  "#808080",
	"crop":   "#ffd700",
}

func TestNewLegend_SortedCodes(t *testing.T) {
	// Labels arrive in observation order; codes must follow sorted order.
	legend, err := NewLegend([]string{"water", "forest", "urban", "crop"}, testPalette)
	require.NoError(t, err)
	require.Len(t, legend.Classes, 4)

	assert.Equal(t, Class{Code: 1, Label: "crop", Color: "#ffd700"}, legend.Classes[0])
	assert.Equal(t, Class{Code: 2, Label: "forest", Color: "#228b22"}, legend.Classes[1])
	assert.Equal(t, Class{Code: 3, Label: "urban", Color: "#808080"}, legend.Classes[2])
	assert.Equal(t, Class{Code: 4, Label: "water", Color: "#1e90ff"}, legend.Classes[3])
}

func TestNewLegend_DuplicateLabels(t *testing.T) {
	legend, err := NewLegend([]string{"water", "water", "forest"}, testPalette)
	require.NoError(t, err)
	assert.Len(t, legend.Classes, 2)
}

func TestNewLegend_MissingPaletteEntry(t *testing.T) {
	_, err := NewLegend([]string{"water", "wetland"}, testPalette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wetland")
}

func TestNewLegend_Empty(t *testing.T) {
	_, err := NewLegend(nil, testPalette)
	assert.Error(t, err)
}

func TestLegend_CodeForLabelFor(t *testing.T) {
	legend, err := NewLegend([]string{"forest", "water"}, testPalette)
	require.NoError(t, err)

	assert.Equal(t, 1, legend.CodeFor("forest"))
	assert.Equal(t, 2, legend.CodeFor("water"))
	assert.Equal(t, 0, legend.CodeFor("unknown"))

	assert.Equal(t, "forest", legend.LabelFor(1))
	assert.Equal(t, "water", legend.LabelFor(2))
	assert.Equal(t, "", legend.LabelFor(99))
}

func TestLegend_Validate(t *testing.T) {
	tests := []struct {
		name    string
		classes []Class
		wantErr string
	}{
		{
			name: "valid",
			classes: []Class{
				{Code: 1, Label: "forest", Color: "#228b22"},
				{Code: 2, Label: "water", Color: "#1e90ff"},
			},
		},
		{
			name: "gap in codes",
			classes: []Class{
				{Code: 1, Label: "forest", Color: "#228b22"},
				{Code: 3, Label: "water", Color: "#1e90ff"},
			},
			wantErr: "code",
		},
		{
			name: "reserved zero code",
			classes: []Class{
				{Code: 0, Label: "forest", Color: "#228b22"},
			},
			wantErr: "code",
		},
		{
			name: "bad color",
			classes: []Class{
				{Code: 1, Label: "forest", Color: "green"},
			},
			wantErr: "color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legend := &Legend{Classes: tt.classes}
			err := legend.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b, err := ParseHexColor("#1e90ff")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x1e), r)
	assert.Equal(t, uint8(0x90), g)
	assert.Equal(t, uint8(0xff), b)

	_, _, _, err = ParseHexColor("1e90ff")
	assert.Error(t, err)

	_, _, _, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.yaml")
	data := `classes:
  - label: forest
    color: "#228b22"
  - label: water
    color: "#1e90ff"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	palette, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"forest": "#228b22", "water": "#1e90ff"}, palette)
}

func TestLoadPalette_DuplicateLabel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.yaml")
	data := `classes:
  - label: forest
    color: "#228b22"
  - label: forest
    color: "#1e90ff"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadPalette(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forest")
}
