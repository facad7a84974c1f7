package model

import (
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Class is one land-cover class: its integer code in the classification
// raster, its label, and its display color.
type Class struct {
	Code  int    `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// Legend is the explicit code→label mapping produced at training-data
// extraction time. Codes run 1..N over lexicographically sorted labels;
// code 0 is reserved for no-data in the classification raster.
type Legend struct {
	Classes []Class `json:"classes" yaml:"classes"`
}

// NoDataCode is the class code reserved for no-data pixels.
const NoDataCode = 0

// NewLegend builds a legend from the distinct labels seen in the training
// data. Labels are sorted lexicographically so the code assignment is
// deterministic; colors are looked up in the palette, which must cover
// every label.
func NewLegend(labels []string, palette map[string]string) (*Legend, error) {
	seen := make(map[string]bool, len(labels))
	var distinct []string
	for _, l := range labels {
		if l == "" {
			return nil, eris.New("legend: empty class label")
		}
		if !seen[l] {
			seen[l] = true
			distinct = append(distinct, l)
		}
	}
	if len(distinct) == 0 {
		return nil, eris.New("legend: no class labels")
	}
	sort.Strings(distinct)

	legend := &Legend{Classes: make([]Class, 0, len(distinct))}
	for i, label := range distinct {
		color, ok := palette[label]
		if !ok {
			return nil, eris.Errorf("legend: no palette color for class %q", label)
		}
		legend.Classes = append(legend.Classes, Class{Code: i + 1, Label: label, Color: color})
	}
	return legend, nil
}

// CodeFor returns the code for a label, or NoDataCode if unknown.
func (l *Legend) CodeFor(label string) int {
	for _, c := range l.Classes {
		if c.Label == label {
			return c.Code
		}
	}
	return NoDataCode
}

// LabelFor returns the label for a code, or "" if unknown.
func (l *Legend) LabelFor(code int) string {
	for _, c := range l.Classes {
		if c.Code == code {
			return c.Label
		}
	}
	return ""
}

// Labels returns the class labels in code order.
func (l *Legend) Labels() []string {
	out := make([]string, 0, len(l.Classes))
	for _, c := range l.Classes {
		out = append(out, c.Label)
	}
	return out
}

// Validate checks the code ordering and color presence of the legend.
// A legend whose codes are not dense 1..N would silently mis-render the
// classification raster, so this is checked before rendering.
func (l *Legend) Validate() error {
	if len(l.Classes) == 0 {
		return eris.New("legend: empty")
	}
	for i, c := range l.Classes {
		if c.Code != i+1 {
			return eris.Errorf("legend: class %q has code %d, want %d", c.Label, c.Code, i+1)
		}
		if c.Color == "" {
			return eris.Errorf("legend: class %q has no color", c.Label)
		}
		if _, _, _, err := ParseHexColor(c.Color); err != nil {
			return eris.Wrapf(err, "legend: class %q", c.Label)
		}
	}
	return nil
}

// ParseHexColor parses a #rrggbb color string.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, eris.Errorf("invalid color %q, want #rrggbb", s)
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, eris.Wrapf(err, "invalid color %q", s)
	}
	return uint8(rv), uint8(gv), uint8(bv), nil
}

// classFile is the on-disk YAML layout of the class palette.
type classFile struct {
	Classes []struct {
		Label string `yaml:"label"`
		Color string `yaml:"color"`
	} `yaml:"classes"`
}

// LoadPalette reads the class palette YAML file mapping labels to colors.
func LoadPalette(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "palette: read %s", path)
	}
	var cf classFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, eris.Wrapf(err, "palette: parse %s", path)
	}
	palette := make(map[string]string, len(cf.Classes))
	for _, c := range cf.Classes {
		if c.Label == "" {
			return nil, eris.Errorf("palette: entry with empty label in %s", path)
		}
		if _, dup := palette[c.Label]; dup {
			return nil, eris.Errorf("palette: duplicate label %q in %s", c.Label, path)
		}
		palette[c.Label] = c.Color
	}
	if len(palette) == 0 {
		return nil, eris.Errorf("palette: no classes in %s", path)
	}
	return palette, nil
}
