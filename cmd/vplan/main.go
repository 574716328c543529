package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/parser/davinci"
	"vplan/internal/parser/fls"
	"vplan/internal/parser/legacy"
	"vplan/internal/parser/untis"
)

type flagConfig struct {
	configPath string
	file       string
	format     string
	out        string
}

func main() {
	flags := parseFlags()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not set up logging:", err)
		os.Exit(1)
	}
	defer log.Sync()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		log.Sugar().Errorw("failed to load config", "error", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	if flags.file == "" {
		log.Sugar().Error("no plan file given, use -file")
		os.Exit(1)
	}

	sink := diag.NewLogger(log)
	registry := buildRegistry(conf, sink)

	factory, err := factoryFor(registry, flags.file, flags.format)
	if err != nil {
		log.Sugar().Errorw("no parser for input", "error", err, "file", flags.file)
		os.Exit(1)
	}

	result, err := parser.Run(factory(flags.file))
	if err != nil {
		log.Sugar().Errorw("parse failed", "error", err, "file", flags.file)
		os.Exit(1)
	}

	log.Sugar().Infow("plan parsed",
		"file", flags.file,
		"records", len(result.Plan),
		"ptype", int(result.PlanType),
		"diagnostics", sink.HasData(),
	)

	if err := writeResult(flags.out, result); err != nil {
		log.Sugar().Errorw("failed to write result", "error", err, "out", flags.out)
		os.Exit(1)
	}
}

// buildRegistry binds every parser to its file extensions.
func buildRegistry(conf *config.Config, sink diag.Sink) *parser.Registry {
	registry := parser.NewRegistry()

	register := func(exts []string, f parser.Factory) {
		for _, ext := range exts {
			registry.Register(ext, f)
		}
	}

	register(fls.Extensions, func(path string) parser.Parser {
		return fls.New(conf, sink, path)
	})
	register(davinci.XMLExtensions, func(path string) parser.Parser {
		return davinci.NewXML(conf, sink, path)
	})
	register(davinci.JSONExtensions, func(path string) parser.Parser {
		return davinci.NewJSON(conf, sink, path)
	})
	register(untis.Extensions, func(path string) parser.Parser {
		return untis.New(conf, sink, path)
	})
	register(legacy.HTMLExtensions, func(path string) parser.Parser {
		return legacy.NewHTML(conf, sink, path)
	})
	register(legacy.PDFExtensions, func(path string) parser.Parser {
		return legacy.NewPDF(conf, sink, path)
	})

	return registry
}

// factoryFor selects a parser by the -format override or by file extension.
func factoryFor(registry *parser.Registry, file, format string) (parser.Factory, error) {
	if format != "" {
		return registry.ForFile("plan." + format)
	}
	return registry.ForFile(file)
}

func writeResult(out string, result *parser.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.file, "file", "", "Plan file to parse (for Untis: any file in the export directory)")
	flag.StringVar(&cfg.format, "format", "", "Force a format (csv, xml, json, txt, html, pdf) instead of extension detection")
	flag.StringVar(&cfg.out, "out", "", "Write the result JSON here instead of stdout")

	flag.Parse()

	return cfg
}
