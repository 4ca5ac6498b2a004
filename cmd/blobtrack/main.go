package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/google/uuid"

	"github.com/LdDl/blobtrack/config"
	"github.com/LdDl/blobtrack/pipeline"
	"github.com/LdDl/blobtrack/store"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("blobtrack", "Track dark blobs in a grayscale video")
	input := parser.String("i", "input", &argparse.Options{Help: "Input FMF video file", Required: true})
	outputDir := parser.String("o", "output", &argparse.Options{Help: "Directory for annotated output frames", Required: false, Default: ""})
	configPath := parser.String("c", "config", &argparse.Options{Help: "YAML config file", Required: false, Default: "config.yaml"})
	recordsPath := parser.String("r", "records", &argparse.Options{Help: "Output records CSV file", Required: false, Default: ""})
	dbPath := parser.String("", "db", &argparse.Options{Help: "SQLite database for records", Required: false, Default: ""})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	cfg := config.Default()
	if _, statErr := os.Stat(*configPath); statErr == nil {
		cfg, err = config.Load(*configPath)
		check(err)
	} else {
		logger.Warnf("Config %s not found, using defaults", *configPath)
	}
	opts, err := cfg.Options()
	check(err)
	opts.RunID = uuid.New()

	src, err := pipeline.OpenFMF(*input, cfg.Framerate())
	check(err)
	defer src.Close()

	p := pipeline.New(logger, src, opts)

	if *outputDir != "" {
		frameSink, err := pipeline.NewPNGDirSink(*outputDir)
		check(err)
		defer frameSink.Close()
		p.SetFrameSink(frameSink)
	}
	if *recordsPath != "" {
		csvSink, err := pipeline.NewCSVSink(*recordsPath)
		check(err)
		defer csvSink.Close()
		p.AddRecordSink(csvSink)
	}
	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		check(err)
		defer db.Close()
		p.AddRecordSink(db.RunSink(opts.RunID))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	if err != nil && err != context.Canceled {
		check(err)
	}
	fmt.Printf("run %v: %d frames, %d records, %d tracks\n", summary.RunID, summary.Frames, summary.Records, summary.Tracks)
}
