package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Workspace   WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Scene       SceneConfig       `yaml:"scene" mapstructure:"scene"`
	Boundary    string            `yaml:"boundary" mapstructure:"boundary"`
	Training    TrainingConfig    `yaml:"training" mapstructure:"training"`
	Classes     string            `yaml:"classes" mapstructure:"classes"`
	Calibration CalibrationConfig `yaml:"calibration" mapstructure:"calibration"`
	Trainer     TrainerConfig     `yaml:"trainer" mapstructure:"trainer"`
	Predictor   PredictorConfig   `yaml:"predictor" mapstructure:"predictor"`
	Render      RenderConfig      `yaml:"render" mapstructure:"render"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// WorkspaceConfig locates input data and output artifacts on disk.
type WorkspaceConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// SceneConfig describes one multispectral scene as per-band files.
// Band keys must cover the canonical band order (blue, green, red, nir,
// swir1, swir2); paths are relative to the workspace dir unless absolute.
type SceneConfig struct {
	Name  string            `yaml:"name" mapstructure:"name"`
	Bands map[string]string `yaml:"bands" mapstructure:"bands"`
}

// TrainingConfig locates labeled training features. Exactly one of
// Shapefile or XLSX should be set; the shapefile carries `type` and `id`
// attributes, the spreadsheet carries id, x, y, type columns.
type TrainingConfig struct {
	Shapefile string `yaml:"shapefile" mapstructure:"shapefile"`
	XLSX      string `yaml:"xlsx" mapstructure:"xlsx"`
	IDField   string `yaml:"id_field" mapstructure:"id_field"`
	TypeField string `yaml:"type_field" mapstructure:"type_field"`
}

// CalibrationConfig holds the sensor calibration constants for converting
// raw digital numbers to percent reflectance.
type CalibrationConfig struct {
	ValidMin float64 `yaml:"valid_min" mapstructure:"valid_min"`
	ValidMax float64 `yaml:"valid_max" mapstructure:"valid_max"`
	Scale    float64 `yaml:"scale" mapstructure:"scale"`
	Offset   float64 `yaml:"offset" mapstructure:"offset"`
}

// TrainerConfig configures decision-tree fitting.
type TrainerConfig struct {
	MaxDepth            int     `yaml:"max_depth" mapstructure:"max_depth"`
	MinSamplesSplit     int     `yaml:"min_samples_split" mapstructure:"min_samples_split"`
	MinSamplesLeaf      int     `yaml:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	MinImpurityDecrease float64 `yaml:"min_impurity_decrease" mapstructure:"min_impurity_decrease"`
}

// PredictorConfig configures per-pixel tree evaluation.
type PredictorConfig struct {
	Workers  int  `yaml:"workers" mapstructure:"workers"`
	Progress bool `yaml:"progress" mapstructure:"progress"`
}

// RenderConfig configures map rendering.
type RenderConfig struct {
	Scale int    `yaml:"scale" mapstructure:"scale"`
	Title string `yaml:"title" mapstructure:"title"`
}

// FetchConfig configures scene download.
type FetchConfig struct {
	Sources     map[string]string `yaml:"sources" mapstructure:"sources"`
	TimeoutSecs int               `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64           `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Retries     int               `yaml:"retries" mapstructure:"retries"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDCOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("workspace.dir", ".")
	v.SetDefault("workspace.output_dir", "output")
	v.SetDefault("classes", "classes.yaml")
	v.SetDefault("calibration.valid_min", 7273)
	v.SetDefault("calibration.valid_max", 43636)
	v.SetDefault("calibration.scale", 0.0000275)
	v.SetDefault("calibration.offset", -0.2)
	v.SetDefault("trainer.max_depth", 16)
	v.SetDefault("trainer.min_samples_split", 2)
	v.SetDefault("trainer.min_samples_leaf", 1)
	v.SetDefault("trainer.min_impurity_decrease", 0.0)
	v.SetDefault("training.id_field", "id")
	v.SetDefault("training.type_field", "type")
	v.SetDefault("predictor.workers", 0)
	v.SetDefault("predictor.progress", true)
	v.SetDefault("render.scale", 1)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.rate_per_sec", 2)
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "landcover.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ResolvePath resolves a configured path against the workspace dir.
// Absolute paths are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace.Dir, p)
}

// OutputPath resolves a file name against the output directory.
func (c *Config) OutputPath(name string) string {
	out := c.Workspace.OutputDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(c.Workspace.Dir, out)
	}
	return filepath.Join(out, name)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
