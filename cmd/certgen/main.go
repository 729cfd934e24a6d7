package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/youruser/certgen/internal/batch"
	"github.com/youruser/certgen/internal/bundle"
	"github.com/youruser/certgen/internal/certimg"
	"github.com/youruser/certgen/internal/config"
	"github.com/youruser/certgen/internal/roster"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	template := fs.String("template", "", "template image (overrides config)")
	data := fs.String("data", "", "roster .xlsx or .csv (overrides config)")
	sheet := fs.String("sheet", "", "worksheet name (default: active sheet)")
	output := fs.String("output", "", "output directory (overrides config)")
	pdfOut := fs.String("pdf", "", "also write all certificates into this PDF")
	dryRun := fs.Bool("dry-run", false, "resolve columns and names without drawing")
	strict := fs.Bool("strict", false, "exit 2 if any row fails")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}
	applyFlags(cfg, *template, *data, *sheet, *output, *pdfOut)

	if err := batch.CheckInputs(cfg); err != nil {
		logger.Error("cannot start", zap.Error(err))
		return 1
	}

	tbl, err := roster.Load(cfg.DataPath, cfg.Sheet)
	if err != nil {
		logger.Error("loading roster", zap.String("path", cfg.DataPath), zap.Error(err))
		return 1
	}
	logger.Info("roster loaded", zap.String("path", cfg.DataPath), zap.Int("rows", tbl.Len()), zap.Strings("headers", tbl.Headers))

	r, err := certimg.NewRenderer(cfg, logger)
	if err != nil {
		logger.Error("renderer", zap.Error(err))
		return 1
	}

	rep := batch.Run(tbl, r, batch.Options{DryRun: *dryRun}, logger)
	printSummary(rep, *dryRun)

	if cfg.PDFBundle != "" && !*dryRun {
		if err := bundle.WritePDF(cfg.PDFBundle, rep.Paths()); err != nil {
			logger.Error("pdf bundle", zap.String("path", cfg.PDFBundle), zap.Error(err))
		} else {
			logger.Info("pdf bundle written", zap.String("path", cfg.PDFBundle))
		}
	}

	if *strict && len(rep.Failures()) > 0 {
		return 2
	}
	return 0
}

func applyFlags(cfg *config.Config, template, data, sheet, output, pdf string) {
	if template != "" {
		cfg.TemplatePath = template
	}
	if data != "" {
		cfg.DataPath = data
	}
	if sheet != "" {
		cfg.Sheet = sheet
	}
	if output != "" {
		cfg.OutputDir = output
	}
	if pdf != "" {
		cfg.PDFBundle = pdf
	}
}

func newLogger(verbose bool) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func printSummary(rep *batch.Report, dryRun bool) {
	verb := "generated"
	if dryRun {
		verb = "planned"
	}
	fmt.Printf("Done. %d of %d certificates %s.\n", rep.Succeeded(), len(rep.Results), verb)
	for _, f := range rep.Failures() {
		fmt.Printf("  line %d (%s): %v\n", f.Line, f.Name, f.Err)
	}
}
