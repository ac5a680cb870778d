package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Planning PlanningConfig `yaml:"planning" mapstructure:"planning"`
	Labels   LabelsConfig   `yaml:"labels" mapstructure:"labels"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the read-only sample datasets.
type DataConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	Samples2025     string `yaml:"samples_2025" mapstructure:"samples_2025"`
	EASamples       string `yaml:"ea_samples" mapstructure:"ea_samples"`
	EATestPits      string `yaml:"ea_test_pits" mapstructure:"ea_test_pits"`
	TestPits2025    string `yaml:"test_pits_2025" mapstructure:"test_pits_2025"`
	SoilBorings2025 string `yaml:"soil_borings_2025" mapstructure:"soil_borings_2025"`
}

// PlanningConfig configures the working plan.
type PlanningConfig struct {
	Plan string `yaml:"plan" mapstructure:"plan"`
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// LabelsConfig configures label placement.
type LabelsConfig struct {
	OffsetDeg     float64 `yaml:"offset_deg" mapstructure:"offset_deg"`
	MinSeparation float64 `yaml:"min_separation" mapstructure:"min_separation"`
	MaxMultiplier int     `yaml:"max_multiplier" mapstructure:"max_multiplier"`
}

// AnalysisConfig configures gap, hot-zone, and distance analysis.
type AnalysisConfig struct {
	GridSizeFt      float64 `yaml:"grid_size_ft" mapstructure:"grid_size_ft"`
	MinGridSizeFt   float64 `yaml:"min_grid_size_ft" mapstructure:"min_grid_size_ft"`
	MaxGridSizeFt   float64 `yaml:"max_grid_size_ft" mapstructure:"max_grid_size_ft"`
	GridStepFt      float64 `yaml:"grid_step_ft" mapstructure:"grid_step_ft"`
	MetersPerDegLat float64 `yaml:"meters_per_deg_lat" mapstructure:"meters_per_deg_lat"`
	MetersPerDegLon float64 `yaml:"meters_per_deg_lon" mapstructure:"meters_per_deg_lon"`
	IncludePlanned  bool    `yaml:"include_planned" mapstructure:"include_planned"`
	Analyte         string  `yaml:"analyte" mapstructure:"analyte"`
}

// StoreConfig configures plan persistence.
type StoreConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres" or "memory"
	DatabaseURL    string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath     string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns       int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns       int32  `yaml:"min_conns" mapstructure:"min_conns"`
	PostgresSchema string `yaml:"postgres_schema" mapstructure:"postgres_schema"`
	SaveAttempts   int    `yaml:"save_attempts" mapstructure:"save_attempts"`
}

// ExportConfig configures exported file names and the clipboard summary.
type ExportConfig struct {
	FilePrefix     string `yaml:"file_prefix" mapstructure:"file_prefix"`
	ClipboardTitle string `yaml:"clipboard_title" mapstructure:"clipboard_title"`
	Dir            string `yaml:"dir" mapstructure:"dir"`
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
	v.SetEnvPrefix("SBMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.samples_2025", "samples-2025.json")
	v.SetDefault("data.ea_samples", "ea-samples.json")
	v.SetDefault("data.ea_test_pits", "ea-test-pits.json")
	v.SetDefault("data.test_pits_2025", "test-pits-2025.json")
	v.SetDefault("data.soil_borings_2025", "soil-borings-2025.json")
	v.SetDefault("planning.plan", "default")
	v.SetDefault("planning.mode", "view")
	v.SetDefault("labels.offset_deg", 0.00015)
	v.SetDefault("labels.min_separation", 0.8)
	v.SetDefault("labels.max_multiplier", 3)
	v.SetDefault("analysis.grid_size_ft", 50)
	v.SetDefault("analysis.min_grid_size_ft", 25)
	v.SetDefault("analysis.max_grid_size_ft", 100)
	v.SetDefault("analysis.grid_step_ft", 25)
	v.SetDefault("analysis.meters_per_deg_lat", 111000)
	v.SetDefault("analysis.meters_per_deg_lon", 86000)
	v.SetDefault("analysis.include_planned", true)
	v.SetDefault("analysis.analyte", "Mercury")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "sbmm.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.save_attempts", 3)
	v.SetDefault("export.file_prefix", "SBMM_Planned_")
	v.SetDefault("export.clipboard_title", "SBMM Round 2 Planned Locations")
	v.SetDefault("export.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks cross-field constraints. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
		if c.Store.MinConns > c.Store.MaxConns {
			errs = append(errs, "store.min_conns must not exceed store.max_conns")
		}
	case "memory":
	default:
		errs = append(errs, "store.driver must be one of sqlite, postgres, memory")
	}

	if c.Store.SaveAttempts < 0 {
		errs = append(errs, "store.save_attempts must be >= 0")
	}

	if c.Labels.OffsetDeg <= 0 {
		errs = append(errs, "labels.offset_deg must be > 0")
	}
	if c.Labels.MinSeparation <= 0 {
		errs = append(errs, "labels.min_separation must be > 0")
	}
	if c.Labels.MaxMultiplier < 1 {
		errs = append(errs, "labels.max_multiplier must be >= 1")
	}

	a := c.Analysis
	if a.MinGridSizeFt <= 0 || a.MaxGridSizeFt < a.MinGridSizeFt {
		errs = append(errs, "analysis grid bounds must satisfy 0 < min_grid_size_ft <= max_grid_size_ft")
	} else if a.GridSizeFt < a.MinGridSizeFt || a.GridSizeFt > a.MaxGridSizeFt {
		errs = append(errs, "analysis.grid_size_ft must be within the grid bounds")
	}
	if a.MetersPerDegLat <= 0 || a.MetersPerDegLon <= 0 {
		errs = append(errs, "analysis meters_per_deg values must be > 0")
	}

	if c.Planning.Plan == "" {
		errs = append(errs, "planning.plan is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
