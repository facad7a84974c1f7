package model

import "time"

// Band names in the canonical stack order. Every loaded stack, every
// training record and every fitted model uses this order.
const (
	BandBlue  = "blue"
	BandGreen = "green"
	BandRed   = "red"
	BandNIR   = "nir"
	BandSWIR1 = "swir1"
	BandSWIR2 = "swir2"
)

// BandOrder is the canonical ordering of spectral bands.
var BandOrder = []string{BandBlue, BandGreen, BandRed, BandNIR, BandSWIR1, BandSWIR2}

// TrainingRecord joins the spectral values sampled at a training feature's
// location with that feature's land-cover label. Values follow BandOrder.
type TrainingRecord struct {
	FeatureID string    `json:"feature_id"`
	Label     string    `json:"label"`
	Values    []float64 `json:"values"`
}

// RunStatus represents the current state of a classification run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Phase names recorded in the run ledger, in pipeline order.
const (
	PhaseLoad    = "load"
	PhaseClip    = "clip"
	PhaseConvert = "convert"
	PhaseExtract = "extract"
	PhaseTrain   = "train"
	PhasePredict = "predict"
	PhaseRender  = "render"
)

// Run represents a single classification run over one scene.
type Run struct {
	ID        string     `json:"id"`
	Scene     string     `json:"scene"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	TrainingRecords  int                `json:"training_records"`
	TrainingAccuracy float64            `json:"training_accuracy"`
	ClassCounts      map[string]int64   `json:"class_counts"`
	ClassAreaM2      map[string]float64 `json:"class_area_m2"`
	ModelPath        string             `json:"model_path,omitempty"`
	RasterPath       string             `json:"raster_path,omitempty"`
	ImagePath        string             `json:"image_path,omitempty"`
	DurationSecs     float64            `json:"duration_secs"`
}

// RunPhase records one pipeline stage of a run.
type RunPhase struct {
	ID        string     `json:"id"`
	RunID     string     `json:"run_id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Detail    string     `json:"detail,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
