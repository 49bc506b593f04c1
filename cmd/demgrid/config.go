package main

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/twpayne/go-demgrid"
)

// A Config is the configuration of the convert subcommand.
type Config struct {
	Geometry struct {
		MinLat   float64 `yaml:"min_lat"`
		MaxLat   float64 `yaml:"max_lat"`
		MinLon   float64 `yaml:"min_lon"`
		MaxLon   float64 `yaml:"max_lon"`
		GridSize float64 `yaml:"grid_size"`
	} `yaml:"geometry"`
	Output struct {
		BinaryPath string `yaml:"binary_path"`
		HeaderPath string `yaml:"header_path"`
	} `yaml:"output"`
	Interpolate bool `yaml:"interpolate"`
	Concurrency int  `yaml:"concurrency"`
}

// defaultConfig returns the default configuration, covering Japan at about
// 100m resolution.
func defaultConfig() *Config {
	config := &Config{}
	config.Geometry.MinLat = 20
	config.Geometry.MaxLat = 46
	config.Geometry.MinLon = 122
	config.Geometry.MaxLon = 154
	config.Geometry.GridSize = 0.001
	config.Output.BinaryPath = "data/elevation.bin"
	config.Output.HeaderPath = "data/elevation.bin.header"
	config.Concurrency = 1
	return config
}

// loadConfig returns the default configuration overridden by the YAML file
// at path, if path is not empty.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

// registerFlags registers flags on flagSet that override config.
func (c *Config) registerFlags(flagSet *flag.FlagSet) {
	flagSet.Float64Var(&c.Geometry.MinLat, "min-lat", c.Geometry.MinLat, "minimum latitude")
	flagSet.Float64Var(&c.Geometry.MaxLat, "max-lat", c.Geometry.MaxLat, "maximum latitude")
	flagSet.Float64Var(&c.Geometry.MinLon, "min-lon", c.Geometry.MinLon, "minimum longitude")
	flagSet.Float64Var(&c.Geometry.MaxLon, "max-lon", c.Geometry.MaxLon, "maximum longitude")
	flagSet.Float64Var(&c.Geometry.GridSize, "grid-size", c.Geometry.GridSize, "grid size in degrees")
	flagSet.StringVar(&c.Output.BinaryPath, "output", c.Output.BinaryPath, "output binary file path")
	flagSet.StringVar(&c.Output.HeaderPath, "header", c.Output.HeaderPath, "output header file path")
	flagSet.BoolVar(&c.Interpolate, "interpolate", c.Interpolate, "fill missing cells from their nearest neighbor")
	flagSet.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "maximum goroutines used to fill missing cells")
}

// geometry returns the validated geometry of c.
func (c *Config) geometry() (demgrid.Geometry, error) {
	return demgrid.NewGeometry(c.Geometry.MinLat, c.Geometry.MaxLat, c.Geometry.MinLon, c.Geometry.MaxLon, c.Geometry.GridSize)
}
