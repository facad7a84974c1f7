package cart

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/terralab/landcover-cli/internal/model"
)

// modelFileVersion guards against loading models written by an
// incompatible release.
const modelFileVersion = 1

// modelFile is the on-disk JSON layout of a fitted model, bundling the
// tree with the legend it was trained against so predict and render can
// run as separate invocations.
type modelFile struct {
	Version    int           `json:"version"`
	Predictors []string      `json:"predictors"`
	Legend     *model.Legend `json:"legend"`
	Root       *Node         `json:"root"`
}

// Save writes the fitted tree and its legend to a JSON model file.
func Save(path string, t *Tree, legend *model.Legend) error {
	mf := modelFile{
		Version:    modelFileVersion,
		Predictors: t.Predictors,
		Legend:     legend,
		Root:       t.Root,
	}
	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cart: marshal model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "cart: write %s", path)
	}
	return nil
}

// Load reads a model file written by Save.
func Load(path string) (*Tree, *model.Legend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "cart: read %s", path)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, nil, eris.Wrapf(err, "cart: parse %s", path)
	}
	if mf.Version != modelFileVersion {
		return nil, nil, eris.Errorf("cart: model file %s has version %d, want %d", path, mf.Version, modelFileVersion)
	}
	if mf.Root == nil || len(mf.Predictors) == 0 {
		return nil, nil, eris.Errorf("cart: model file %s is incomplete", path)
	}
	if mf.Legend == nil {
		return nil, nil, eris.Errorf("cart: model file %s has no legend", path)
	}
	if err := mf.Legend.Validate(); err != nil {
		return nil, nil, err
	}
	return &Tree{Predictors: mf.Predictors, Root: mf.Root}, mf.Legend, nil
}
