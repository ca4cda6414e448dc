package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gompdf/pageflow"
	"github.com/gompdf/pageflow/internal/config"
)

func main() {
	var (
		inputFile  string
		outputFile string
		configFile string
		dump       bool
		verbose    bool
	)

	flag.StringVar(&inputFile, "input", "", "Input HTML file path")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&configFile, "config", "", "Configuration file (.toml or .yaml)")
	flag.BoolVar(&dump, "dump", false, "Print the layout tree instead of writing a PDF")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: input file is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(inputFile, outputFile, configFile, dump, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error converting file: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile, outputFile, configFile string, dump, verbose bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || verbose

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	options, err := cfg.Options()
	if err != nil {
		return err
	}
	options.Logger = logger
	converter := pageflow.NewWithOptions(options)

	if dump {
		doc, err := converter.LayoutFile(inputFile)
		if err != nil {
			return err
		}
		w := os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return doc.Dump(w)
	}

	if outputFile == "" {
		ext := filepath.Ext(inputFile)
		outputFile = inputFile[:len(inputFile)-len(ext)] + ".pdf"
	}
	if err := converter.ConvertFile(inputFile, outputFile); err != nil {
		return err
	}
	logger.Debug("converted", "input", inputFile, "output", outputFile)
	return nil
}
