// Package integration runs one jabsc invocation against a host build:
// resolve the output directory, register it as a compile source root,
// collect ABS sources, translate them and report the counts.
//
// Registration happens before collection and translation and is never
// rolled back. A failed invocation leaves the output root registered
// with the host.
package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/jabsc/host"
	"github.com/teranos/jabsc/logger"
	"github.com/teranos/jabsc/output"
	"github.com/teranos/jabsc/source"
	"github.com/teranos/jabsc/translate"
)

// Config is the plain data an invocation needs
type Config struct {
	// SourceDir holds the ABS sources. Empty means BaseDir/src/main/abs.
	SourceDir string
	// OutputDir overrides the generated sources directory. Empty means derived.
	OutputDir string
	// BuildRoot is the host's absolute build directory
	BuildRoot string
	// BaseDir is the project base directory
	BaseDir string
	// Extension of input files, without the dot. Empty means "abs".
	Extension string
	// WorkDir anchors relative OutputDir values. Empty means the process working directory.
	WorkDir string
}

// Report describes a finished invocation
type Report struct {
	InvocationID string
	SourceDir    string
	OutputDir    string
	Sources      []string
	Produced     []string
	Duration     time.Duration
}

// Collected returns the number of source files handed to the translator
func (r *Report) Collected() int { return len(r.Sources) }

// ProducedCount returns the number of files the translator reported
func (r *Report) ProducedCount() int { return len(r.Produced) }

// Integration wires the collector and resolver to a translator and a host
type Integration struct {
	cfg       Config
	resolver  *output.Resolver
	collector *source.Collector
	registrar host.Registrar
	compiler  translate.Compiler
	logger    *zap.SugaredLogger
}

// New creates an integration. A nil log uses the global logger.
func New(cfg Config, registrar host.Registrar, compiler translate.Compiler, log *zap.SugaredLogger) *Integration {
	if log == nil {
		log = logger.Logger
	}
	resolver := output.NewResolver()
	if cfg.WorkDir != "" {
		resolver = &output.Resolver{WorkDir: cfg.WorkDir}
	}
	return &Integration{
		cfg:       cfg,
		resolver:  resolver,
		collector: source.NewCollector(cfg.Extension),
		registrar: registrar,
		compiler:  compiler,
		logger:    log.Named("integration"),
	}
}

// SourceDir returns the directory sources are collected from
func (i *Integration) SourceDir() string {
	if i.cfg.SourceDir != "" {
		return i.cfg.SourceDir
	}
	return output.DefaultSourceDirectory(i.cfg.BaseDir)
}

// OutputDir returns the absolute output directory for this configuration
func (i *Integration) OutputDir() string {
	return i.resolver.Abs(i.resolver.Resolve(i.cfg.OutputDir, i.cfg.BuildRoot))
}

// Execute performs resolve, register, collect, translate and report in order.
// Any failure is returned as *IntegrationFailure.
func (i *Integration) Execute(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		InvocationID: uuid.NewString(),
		SourceDir:    i.SourceDir(),
		OutputDir:    i.OutputDir(),
	}
	ctx = logger.WithInvocationID(ctx, report.InvocationID)
	log := logger.FromContext(ctx, i.logger)

	i.registrar.AddCompileSourceRoot(report.OutputDir)
	log.Infow("Registered compile source root",
		logger.FieldSourceRoot, report.OutputDir,
		logger.FieldBuildRoot, i.cfg.BuildRoot)

	sources, err := i.collector.Collect(report.SourceDir)
	if err != nil {
		log.Errorw("Source collection failed",
			logger.FieldStage, string(StageCollect),
			logger.FieldSourceDir, report.SourceDir,
			logger.FieldError, err)
		return nil, &IntegrationFailure{
			Stage:     StageCollect,
			SourceDir: report.SourceDir,
			OutputDir: report.OutputDir,
			Err:       err,
		}
	}
	report.Sources = sources
	log.Debugw("Collected sources", logger.FieldSourceDir, report.SourceDir, "files", sources)

	log.Infow("Compiling ABS sources",
		logger.FieldCollected, len(sources),
		logger.FieldOutputDir, report.OutputDir)

	produced, err := i.compiler.Compile(ctx, sources, report.OutputDir)
	if err != nil {
		failure := translate.AsFailure(err, sources, report.OutputDir)
		log.Errorw("Translation failed",
			logger.FieldStage, string(StageTranslate),
			logger.FieldCollected, len(sources),
			logger.FieldError, err)
		return nil, &IntegrationFailure{
			Stage:     StageTranslate,
			SourceDir: report.SourceDir,
			OutputDir: report.OutputDir,
			Collected: len(sources),
			Err:       failure,
		}
	}
	report.Produced = produced
	report.Duration = time.Since(start)

	log.Infow("Compiled ABS sources",
		logger.FieldCollected, len(sources),
		logger.FieldProduced, len(produced),
		logger.FieldOutputDir, report.OutputDir,
		logger.FieldDurationMS, report.Duration.Milliseconds())

	return report, nil
}
