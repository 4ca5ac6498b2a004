// Package config loads run settings from a YAML file. All keys live under a
// single track_blobs section; anything omitted falls back to the defaults.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/LdDl/blobtrack/blob"
	"github.com/LdDl/blobtrack/pipeline"
)

// Config mirrors the YAML file layout.
type Config struct {
	TrackBlobs TrackBlobs `yaml:"track_blobs"`
}

// TrackBlobs configures one tracking run. Filter bounds are pointers so an
// omitted key reads as "criterion disabled" rather than zero.
type TrackBlobs struct {
	Framerate         float64 `yaml:"framerate"`
	BackgroundSamples int     `yaml:"background_samples"`
	ThresholdSamples  int     `yaml:"threshold_samples"`
	ThresholdMargin   uint8   `yaml:"threshold_margin"`
	MedianKernel      int     `yaml:"median_kernel"`
	MaxAge            int     `yaml:"max_age"`
	MinHits           int     `yaml:"min_hits"`
	IoUThreshold      float64 `yaml:"iou_threshold"`
	Seed              int64   `yaml:"seed"`

	MinThreshold  uint8   `yaml:"min_threshold"`
	MaxThreshold  uint8   `yaml:"max_threshold"`
	ThresholdStep uint8   `yaml:"threshold_step"`
	MinDistance   float64 `yaml:"min_distance"`
	BBoxScale     float64 `yaml:"bbox_scale"`

	MinArea         *float64 `yaml:"min_area"`
	MaxArea         *float64 `yaml:"max_area"`
	MinCircularity  *float64 `yaml:"min_circularity"`
	MaxCircularity  *float64 `yaml:"max_circularity"`
	MinConvexity    *float64 `yaml:"min_convexity"`
	MaxConvexity    *float64 `yaml:"max_convexity"`
	MinInertiaRatio *float64 `yaml:"min_inertia_ratio"`
	MaxInertiaRatio *float64 `yaml:"max_inertia_ratio"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := pipeline.DefaultOptions()
	return &Config{TrackBlobs: TrackBlobs{
		Framerate:         30,
		BackgroundSamples: opts.BackgroundSamples,
		ThresholdSamples:  opts.ThresholdSamples,
		ThresholdMargin:   opts.ThresholdMargin,
		MedianKernel:      opts.MedianKernel,
		MaxAge:            opts.MaxAge,
		MinHits:           opts.MinHits,
		IoUThreshold:      opts.IoUThreshold,
		Seed:              opts.Seed,
		MinThreshold:      opts.Blob.MinThreshold,
		MaxThreshold:      opts.Blob.MaxThreshold,
		ThresholdStep:     opts.Blob.ThresholdStep,
		MinDistance:       opts.Blob.MinDistance,
		BBoxScale:         opts.Blob.BoxScale,
	}}
}

// Load reads the configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "can't parse config %s", path)
	}
	return cfg, nil
}

// Options builds the pipeline options from the loaded configuration. Filter
// criteria with only one bound set are rejected.
func (c *Config) Options() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	t := c.TrackBlobs

	if t.BackgroundSamples > 0 {
		opts.BackgroundSamples = t.BackgroundSamples
	}
	if t.ThresholdSamples > 0 {
		opts.ThresholdSamples = t.ThresholdSamples
	}
	if t.ThresholdMargin > 0 {
		opts.ThresholdMargin = t.ThresholdMargin
	}
	if t.MedianKernel > 0 {
		opts.MedianKernel = t.MedianKernel
	}
	if t.MaxAge > 0 {
		opts.MaxAge = t.MaxAge
	}
	if t.MinHits > 0 {
		opts.MinHits = t.MinHits
	}
	if t.IoUThreshold > 0 {
		opts.IoUThreshold = t.IoUThreshold
	}
	opts.Seed = t.Seed

	params := blob.DefaultParams()
	if t.MinThreshold > 0 {
		params.MinThreshold = t.MinThreshold
	}
	if t.MaxThreshold > 0 {
		params.MaxThreshold = t.MaxThreshold
	}
	if t.ThresholdStep > 0 {
		params.ThresholdStep = t.ThresholdStep
	}
	if t.MinDistance > 0 {
		params.MinDistance = t.MinDistance
	}
	if t.BBoxScale > 0 {
		params.BoxScale = t.BBoxScale
	}

	for _, f := range []struct {
		name     string
		min, max *float64
		dst      **blob.Range
	}{
		{"area", t.MinArea, t.MaxArea, &params.Area},
		{"circularity", t.MinCircularity, t.MaxCircularity, &params.Circularity},
		{"convexity", t.MinConvexity, t.MaxConvexity, &params.Convexity},
		{"inertia_ratio", t.MinInertiaRatio, t.MaxInertiaRatio, &params.Inertia},
	} {
		switch {
		case f.min == nil && f.max == nil:
			// criterion disabled
		case f.min == nil || f.max == nil:
			return opts, errors.Wrapf(blob.ErrPartialRange, "%s filter", f.name)
		default:
			*f.dst = blob.NewRange(*f.min, *f.max)
		}
	}

	opts.Blob = params
	return opts, opts.Blob.Validate()
}

// Framerate returns the configured nominal capture frame rate.
func (c *Config) Framerate() float64 {
	if c.TrackBlobs.Framerate > 0 {
		return c.TrackBlobs.Framerate
	}
	return 30
}
