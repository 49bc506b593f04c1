package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/twpayne/go-demgrid"
)

type command struct {
	name        string
	description string
	run         func(context.Context, *flag.FlagSet, []string) error
}

var commands = []command{
	{"convert", "Convert elevation samples to a binary grid.", runConvert},
	{"lookup", "Look up the elevation at a latitude and longitude in a binary grid.", runLookup},
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "USAGE:\n    %s [SUBCOMMAND] [SUBCOMMAND FLAGS]\n\nSUBCOMMANDS:\n", filepath.Base(os.Args[0]))
	for _, command := range commands {
		fmt.Fprintf(os.Stderr, "%12s    %s\n", command.name, command.description)
	}
	fmt.Fprintf(os.Stderr, "\nUse -h as SUBCOMMAND FLAG to print help for each subcommand.\n")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func runConvert(ctx context.Context, flagSet *flag.FlagSet, args []string) error {
	config := defaultConfig()
	configPath := flagSet.String("config", "", "path to YAML config file")
	input := flagSet.String("input", "", "input file or directory")
	test := flagSet.Bool("test", false, "generate test data instead of reading input")
	metricsTextfile := flagSet.String("metrics-textfile", "", "write Prometheus metrics to this file")
	verbose := flagSet.Bool("verbose", false, "log skipped rows")
	config.registerFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		var err error
		config, err = applyConfigFile(flagSet, *configPath)
		if err != nil {
			return err
		}
	}

	logger := newLogger(*verbose)

	geometry, err := config.geometry()
	if err != nil {
		return err
	}
	logger.Info("grid",
		"width", geometry.Width(),
		"height", geometry.Height(),
		"grid_size", geometry.GridSize,
		"grid_size_m", geometry.GridSize*111000,
		"lat", []float64{geometry.MinLat, geometry.MaxLat},
		"lon", []float64{geometry.MinLon, geometry.MaxLon},
	)

	var sources []demgrid.Source
	switch {
	case *test:
		sources = []demgrid.Source{
			&demgrid.SyntheticSource{Geometry: geometry},
		}
	case *input != "":
		sources, err = resolveSources(*input)
		if err != nil {
			return err
		}
		logger.Info("found sources", "input", *input, "count", len(sources))
	default:
		return errors.New("one of -input or -test is required")
	}

	grid := demgrid.NewGrid(geometry)
	result, err := demgrid.IngestAll(ctx, grid, sources, demgrid.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("ingested", "result", result)

	if config.Interpolate && !*test {
		logger.Info("interpolating missing data points")
		filled, err := demgrid.FillGaps(ctx, grid, demgrid.WithConcurrency(config.Concurrency))
		if err != nil {
			return err
		}
		logger.Info("interpolation complete", "filled", filled)
	}

	if err := demgrid.WriteOutputs(grid, config.Output.BinaryPath, config.Output.HeaderPath); err != nil {
		return err
	}
	if fileInfo, err := os.Stat(config.Output.BinaryPath); err == nil {
		logger.Info("saved binary data", "path", config.Output.BinaryPath, "size_mb", float64(fileInfo.Size())/(1<<20))
	}
	logger.Info("saved header", "path", config.Output.HeaderPath)
	logger.Info("statistics", "stats", grid.Stats())

	if *metricsTextfile != "" {
		if err := prometheus.WriteToTextfile(*metricsTextfile, prometheus.DefaultGatherer); err != nil {
			return err
		}
	}
	return nil
}

// applyConfigFile returns the configuration from the file at path, with any
// flags explicitly set in flagSet taking precedence.
func applyConfigFile(flagSet *flag.FlagSet, path string) (*Config, error) {
	config, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	overrides := flag.NewFlagSet(flagSet.Name(), flag.ContinueOnError)
	config.registerFlags(overrides)
	var errs []error
	flagSet.Visit(func(f *flag.Flag) {
		if overrides.Lookup(f.Name) != nil {
			errs = append(errs, overrides.Set(f.Name, f.Value.String()))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return config, nil
}

// sourceForFilename returns the source for filename in fsys, chosen by
// filename extension, or nil if the extension is not recognized.
func sourceForFilename(fsys fs.FS, filename string) demgrid.Source {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return &demgrid.TupleListSource{FS: fsys, Filename: filename}
	case ".csv":
		return &demgrid.DelimitedTextSource{FS: fsys, Filename: filename}
	case ".tif", ".tiff":
		return &demgrid.GeoTIFFSource{FS: fsys, Filename: filename}
	default:
		return nil
	}
}

// resolveSources returns the sources for input, which may be a file or a
// directory. Directories are searched recursively and their XML files are
// returned before their CSV files, and their CSV files before their GeoTIFF
// files.
func resolveSources(input string) ([]demgrid.Source, error) {
	fileInfo, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !fileInfo.IsDir() {
		source := sourceForFilename(os.DirFS(filepath.Dir(input)), filepath.Base(input))
		if source == nil {
			return nil, fmt.Errorf("%s: unsupported file type %q", input, filepath.Ext(input))
		}
		return []demgrid.Source{source}, nil
	}

	fsys := os.DirFS(input)
	var sources []demgrid.Source
	if err := fs.WalkDir(fsys, ".", func(path string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if dirEntry.Type().IsRegular() {
			if source := sourceForFilename(fsys, path); source != nil {
				sources = append(sources, source)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	slices.SortStableFunc(sources, func(a, b demgrid.Source) int {
		return sourceRank(a) - sourceRank(b)
	})
	return sources, nil
}

func sourceRank(source demgrid.Source) int {
	switch source.(type) {
	case *demgrid.TupleListSource:
		return 0
	case *demgrid.DelimitedTextSource:
		return 1
	default:
		return 2
	}
}

func runLookup(ctx context.Context, flagSet *flag.FlagSet, args []string) error {
	binaryPath := flagSet.String("data", "data/elevation.bin", "binary grid file path")
	headerPath := flagSet.String("header", "data/elevation.bin.header", "header file path")
	bilinear := flagSet.Bool("bilinear", false, "interpolate between cell centers")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 2 {
		return errors.New("syntax: demgrid lookup [flags] latitude longitude")
	}
	lat, err := strconv.ParseFloat(flagSet.Arg(0), 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(flagSet.Arg(1), 64)
	if err != nil {
		return err
	}

	grid, err := demgrid.LoadGrid(*binaryPath, *headerPath)
	if err != nil {
		return err
	}
	lookup, err := demgrid.NewLookup(grid)
	if err != nil {
		return err
	}

	var elevation float64
	if *bilinear {
		elevation, err = lookup.InterpolatedElevation(ctx, lat, lon)
	} else {
		elevation, err = lookup.Elevation(ctx, lat, lon)
	}
	if err != nil {
		return err
	}
	fmt.Println(elevation)
	return nil
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("no subcommand was provided")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return nil
	}
	for _, command := range commands {
		if command.name == name {
			flagSet := flag.NewFlagSet(name, flag.ExitOnError)
			return command.run(ctx, flagSet, os.Args[2:])
		}
	}
	printUsage()
	return fmt.Errorf("subcommand %q was not found", name)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
