// Package pipeline wires the stages that turn the published burden table into the
// dataset artifacts: fetch, locate, extract, normalize, project and write.
package pipeline

import (
	"context"
	"fmt"

	"asthma-pipeline/internal/components/assert"
	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/dataset"
	"asthma-pipeline/internal/grid"
	"asthma-pipeline/internal/normalize"
	"asthma-pipeline/internal/projection"
	"asthma-pipeline/internal/scrapers/table"
	"asthma-pipeline/internal/section"
	otelsetup "asthma-pipeline/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_pipeline_run   = "pipeline.run"
	report_pipeline_write = "pipeline.write"
)

var tracer = otelsetup.Tracer("asthma-pipeline/pipeline")

// Fetcher is satisfied by fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Result keeps the grid produced by every stage.
type Result struct {
	Table      grid.Grid
	Section    grid.Grid
	Normalized grid.Grid
	Projected  grid.Grid
}

type Pipeline struct {
	config     Config
	fetcher    Fetcher
	extractor  section.Extractor
	normalizer normalize.Normalizer
	tel        telemetry.API
}

func New(config Config, fetcher Fetcher, tel telemetry.API) (Pipeline, error) {
	assert.NotNil(fetcher)
	assert.NotNil(tel)
	assert.NotEmpty(config.Columns)

	normalizer, err := normalize.New(normalize.Options{
		DecimalSeparators: config.Normalize.DecimalSeparators,
		MinusSigns:        config.Normalize.MinusSigns,
	}, tel)
	if err != nil {
		return Pipeline{}, err
	}

	return Pipeline{
		config:  config,
		fetcher: fetcher,
		extractor: section.NewExtractor(section.Options{
			Label:             config.Section.Label,
			PlaceholderPrefix: config.Section.PlaceholderPrefix,
			CategoryColumn:    config.Section.CategoryColumn,
		}, tel),
		normalizer: normalizer,
		tel:        telemetry.NewScopedAPI("pipeline", tel),
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Transform runs every stage except the writes.
func (p Pipeline) Transform(ctx context.Context) (Result, error) {
	var res Result

	fetchCtx, span := tracer.Start(ctx, "fetch", trace.WithAttributes(attribute.String("url", p.config.Source.URL)))
	markup, err := p.fetcher.Fetch(fetchCtx, p.config.Source.URL)
	endSpan(span, err)
	if err != nil {
		return res, err
	}

	_, span = tracer.Start(ctx, "locate")
	res.Table, err = table.Locate(markup)
	endSpan(span, err)
	if err != nil {
		return res, err
	}
	p.tel.ReportDebug("table located", res.Table.Len(), res.Table.Width())

	_, span = tracer.Start(ctx, "extract")
	res.Section, err = p.extractor.Extract(res.Table)
	endSpan(span, err)
	if err != nil {
		return res, err
	}

	normalizeCtx, span := tracer.Start(ctx, "normalize")
	res.Normalized = p.normalizer.Grid(normalizeCtx, res.Section)
	endSpan(span, nil)

	_, span = tracer.Start(ctx, "project")
	res.Projected, err = projection.Project(res.Normalized, p.config.Columns)
	endSpan(span, err)
	if err != nil {
		return res, err
	}

	return res, nil
}

// Write stores the projected grid in every configured output.
func (p Pipeline) Write(ctx context.Context, projected grid.Grid) error {
	ctx, span := tracer.Start(ctx, "write")
	err := p.write(ctx, projected)
	endSpan(span, err)
	if err != nil {
		p.tel.ReportBroken(report_pipeline_write, err)
	}
	return err
}

func (p Pipeline) write(ctx context.Context, projected grid.Grid) error {
	out := p.config.Output
	if csvPath := out.CSVPath(); csvPath != "" {
		err := dataset.WriteFile(csvPath, projected)
		if err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
		p.tel.ReportDebug("wrote csv", csvPath)
	}
	if out.XLSX != "" {
		err := dataset.WriteXLSX(out.XLSX, projected)
		if err != nil {
			return fmt.Errorf("write %s: %w", out.XLSX, err)
		}
		p.tel.ReportDebug("wrote xlsx", out.XLSX)
	}
	if out.SQLite.Enabled() {
		db, err := out.SQLite.OpenDB()
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer db.Close()
		err = dataset.WriteSQLite(ctx, db, out.SQLiteTable, projected)
		if err != nil {
			return fmt.Errorf("write sqlite table %s: %w", out.SQLiteTable, err)
		}
		p.tel.ReportDebug("wrote sqlite table", out.SQLiteTable)
	}
	return nil
}

// Run transforms the source table and writes the outputs. Nothing is written when a
// stage fails.
func (p Pipeline) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "run")
	defer span.End()

	res, err := p.Transform(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.tel.ReportBroken(report_pipeline_run, err)
		return res, err
	}

	err = p.Write(ctx, res.Projected)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	p.tel.ReportCount(report_pipeline_run, int64(res.Projected.Len()))
	return res, nil
}
