package converter

import (
	"bytes"
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/nconklindev/lms2omr/internal/logger"
	"github.com/nconklindev/lms2omr/internal/types"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Request names the input sheets and where to put the upload file.
// AbsentFile is optional. PrimaryData and AbsentData, when set, are used
// instead of reading the named files again.
type Request struct {
	PrimaryFile string
	AbsentFile  string
	OutputDir   string

	PrimaryData *types.FileData
	AbsentData  *types.FileData
}

// Converter turns an LMS scores report into the OMR upload workbook. One
// Converter runs a single conversion at a time.
type Converter struct {
	log     logger.Logger
	running atomic.Bool
}

func New(log logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{log: log}
}

// Convert runs the whole pipeline. Nothing is written unless every phase
// succeeds. Progress in [0,1] is sent on progressChan when it is not nil;
// sends never block.
func (c *Converter) Convert(ctx context.Context, req Request, progressChan chan<- float64) (*types.ConversionResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrConversionInProgress
	}
	defer c.running.Store(false)

	runID := uuid.NewString()
	start := time.Now()
	c.log.Info("[Converter] conversion started", map[string]interface{}{
		"run": runID, "primary": req.PrimaryFile, "absent": req.AbsentFile, "out": req.OutputDir,
	})

	result, err := c.convert(ctx, runID, req, progressChan)
	if err != nil {
		c.log.Error("[Converter] conversion failed", err, map[string]interface{}{"run": runID})
		return nil, err
	}

	c.log.Info("[Converter] conversion finished", map[string]interface{}{
		"run":      runID,
		"rows":     result.RowsWritten,
		"skipped":  result.SkippedRows,
		"output":   result.OutputFile,
		"duration": time.Since(start).String(),
	})
	return result, nil
}

func (c *Converter) convert(ctx context.Context, runID string, req Request, progressChan chan<- float64) (*types.ConversionResult, error) {
	if req.PrimaryFile == "" {
		return nil, ErrMissingRequiredFile
	}

	reportProgress := func(p float64) {
		if progressChan != nil {
			select {
			case progressChan <- p:
			default:
			}
		}
	}

	// Both sheets are independent, read them side by side.
	var primary, absent *types.FileData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if req.PrimaryData != nil {
			primary = req.PrimaryData
			return nil
		}
		data, err := ReadSheetFile(req.PrimaryFile)
		if err != nil {
			return errors.Wrap(err, "primary sheet")
		}
		primary = data
		return gctx.Err()
	})
	if req.AbsentFile != "" {
		g.Go(func() error {
			if req.AbsentData != nil {
				absent = req.AbsentData
				return nil
			}
			data, err := ReadSheetFile(req.AbsentFile)
			if err != nil {
				return errors.Wrap(err, "absent roster")
			}
			absent = data
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	reportProgress(0.2)

	scored, skippedScored := NormalizeSheet(primary, true)
	unscored, skippedUnscored := NormalizeSheet(absent, false)
	c.log.Debug("[Converter] sheets normalized", map[string]interface{}{
		"run":              runID,
		"scored":           len(scored),
		"unscored":         len(unscored),
		"skipped_scored":   skippedScored,
		"skipped_unscored": skippedUnscored,
	})
	if skippedScored+skippedUnscored > 0 {
		c.log.Warn("[Converter] rows without a student id were skipped", map[string]interface{}{
			"run": runID, "count": skippedScored + skippedUnscored,
		})
	}
	reportProgress(0.3)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := BuildOutput(scored, unscored)

	buf, err := c.serialize(rows, reportProgress)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir(req.PrimaryFile)
	}
	outputFile, err := Save(buf, outDir)
	if err != nil {
		return nil, err
	}
	reportProgress(1)

	result := &types.ConversionResult{
		RunID:         runID,
		PrimaryFile:   req.PrimaryFile,
		AbsentFile:    req.AbsentFile,
		OutputFile:    outputFile,
		ScoredCount:   len(scored),
		UnscoredCount: len(unscored),
		SkippedRows:   skippedScored + skippedUnscored,
		RowsWritten:   len(rows),
	}
	result.MeanCorrect, result.MedianCorrect = correctSummary(scored)
	return result, nil
}

// serialize runs Serialize with its progress mapped onto 0.3..0.9.
func (c *Converter) serialize(rows []types.OutputRow, reportProgress func(float64)) (*bytes.Buffer, error) {
	serializeProgress := make(chan float64, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range serializeProgress {
			reportProgress(0.3 + p*0.6)
		}
	}()

	buf, err := Serialize(rows, serializeProgress)
	close(serializeProgress)
	<-done
	return buf, err
}

// correctSummary returns the mean and median correct-answer count of the
// scored records, 0 for an empty list.
func correctSummary(records []types.StudentRecord) (mean, median float64) {
	if len(records) == 0 {
		return 0, 0
	}
	data := make(stats.Float64Data, len(records))
	for i, rec := range records {
		data[i] = rec.Correct
	}
	mean, _ = data.Mean()
	median, _ = data.Median()
	return mean, median
}

// DefaultOutputDir puts the upload file next to the primary sheet.
func DefaultOutputDir(primaryFile string) string {
	return filepath.Dir(primaryFile)
}
