// Package dataset loads the read-only sample datasets the map overlays.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// Paths names the five dataset files. Relative paths resolve against Dir.
type Paths struct {
	Dir             string
	Samples2025     string
	EASamples       string
	EATestPits      string
	TestPits2025    string
	SoilBorings2025 string
}

// DefaultPaths returns the file names used by the field deployment.
func DefaultPaths() Paths {
	return Paths{
		Dir:             "data",
		Samples2025:     "samples-2025.json",
		EASamples:       "ea-samples.json",
		EATestPits:      "ea-test-pits.json",
		TestPits2025:    "test-pits-2025.json",
		SoilBorings2025: "soil-borings-2025.json",
	}
}

func (p Paths) resolve(name string) string {
	if filepath.IsAbs(name) || p.Dir == "" {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// Load reads all five datasets concurrently. The first failure cancels the
// remaining reads and is returned wrapped with the file name.
func Load(ctx context.Context, paths Paths) (*model.Datasets, error) {
	start := time.Now()
	data := &model.Datasets{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Samples2025, err = loadFile[model.Sample2025](gctx, paths.resolve(paths.Samples2025))
		return err
	})
	g.Go(func() (err error) {
		data.EASamples, err = loadFile[model.EASample](gctx, paths.resolve(paths.EASamples))
		return err
	})
	g.Go(func() (err error) {
		data.EATestPits, err = loadFile[model.EATestPit](gctx, paths.resolve(paths.EATestPits))
		return err
	})
	g.Go(func() (err error) {
		data.TestPits2025, err = loadFile[model.TestPit](gctx, paths.resolve(paths.TestPits2025))
		return err
	})
	g.Go(func() (err error) {
		data.SoilBorings2025, err = loadFile[model.SoilBoring](gctx, paths.resolve(paths.SoilBorings2025))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("dataset: loaded",
		zap.Int("samples_2025", len(data.Samples2025)),
		zap.Int("ea_samples", len(data.EASamples)),
		zap.Int("ea_test_pits", len(data.EATestPits)),
		zap.Int("test_pits_2025", len(data.TestPits2025)),
		zap.Int("soil_borings_2025", len(data.SoilBorings2025)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func loadFile[T any](ctx context.Context, path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	items, err := collect[T](ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: decode %s", path)
	}
	return items, nil
}
