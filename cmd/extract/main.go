// Command extract runs the valuation-document extraction pipeline from the
// command line: a single document, or a whole directory through the worker
// queue.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/async"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment/gemini"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment/openai"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/common"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/export"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/fields"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/ocr"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/pipeline"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/strategy"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "extract",
		Short: "Valuation document extraction pipeline",
	}
	root.AddCommand(processCmd(logger), batchCmd(logger))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildProcessor wires strategies, field engine, and the optional augmenter
// from environment configuration.
func buildProcessor(ctx context.Context, logger *slog.Logger) (*pipeline.Processor, error) {
	cfg := common.LoadConfig()

	tools := ocr.NewEngine(ocr.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Mutool:    cfg.OCR.Mutool,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		Scale:     cfg.OCR.Scale,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	strategies := []extract.Strategy{
		strategy.NewPDF(tools, logger),
		strategy.NewWord(logger),
		strategy.NewSpreadsheet(logger),
		strategy.NewImage(tools, logger),
	}

	var augmenter *augment.Service
	switch cfg.AI.Provider {
	case "openai":
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}, logger)
		augmenter = augment.NewService(client, augment.Config{Model: cfg.AI.Model, Timeout: cfg.AI.Timeout}, logger)
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		augmenter = augment.NewService(client, augment.Config{Model: cfg.AI.Model, Timeout: cfg.AI.Timeout}, logger)
	case "":
		logger.Warn("no AI provider configured, augmentation will be skipped")
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}

	return pipeline.NewProcessor(strategies, fields.NewEngine(), augmenter, pipeline.Config{
		HighConfidenceThreshold: cfg.Pipeline.HighConfidenceThreshold,
		AIThreshold:             cfg.Pipeline.AIThreshold,
		ReviewThreshold:         cfg.Pipeline.ReviewThreshold,
	}, logger), nil
}

func processCmd(logger *slog.Logger) *cobra.Command {
	var (
		mimeType string
		outPath  string
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Extract fields from a single document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proc, err := buildProcessor(ctx, logger)
			if err != nil {
				return err
			}

			res, err := proc.Process(ctx, args[0], mimeType)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				wb, err := export.NewService(logger).ResultWorkbook(res)
				if err != nil {
					return fmt.Errorf("build workbook: %w", err)
				}
				if err := os.WriteFile(xlsxPath, wb, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
			}

			return writeResultJSON(res, outPath)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "declared MIME type (sniffed when empty)")
	cmd.Flags().StringVar(&outPath, "out", "", "write result JSON to this path instead of stdout")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX review report")
	return cmd
}

func batchCmd(logger *slog.Logger) *cobra.Command {
	var (
		dir     string
		workers int
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract fields from every supported document in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			ctx := cmd.Context()
			proc, err := buildProcessor(ctx, logger)
			if err != nil {
				return err
			}

			jobs, skipped, err := collectJobs(dir, logger)
			if err != nil {
				return err
			}
			logger.Info("batch scan complete", "dir", dir, "matched", len(jobs), "deduplicated", skipped)

			var (
				mu        sync.Mutex
				processed int
				failures  int
			)
			queue := async.NewProcessorQueue(proc, logger,
				async.WithWorkers(workers),
				async.WithResultHandler(func(job async.Job, res *extract.DocumentExtractionResult, err error) {
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failures++
						return
					}
					processed++
					if outDir != "" {
						name := filepath.Base(job.Path) + ".json"
						if werr := writeResultJSON(res, filepath.Join(outDir, name)); werr != nil {
							logger.Error("write result failed", "path", job.Path, "error", werr)
						}
					}
				}),
			)

			for _, j := range jobs {
				_ = queue.Enqueue(ctx, j)
			}
			queue.Shutdown(ctx)

			fmt.Printf("Batch extraction complete!\n")
			fmt.Printf("- Documents processed: %d\n", processed)
			fmt.Printf("- Failures: %d\n", failures)
			fmt.Printf("- Duplicates skipped: %d\n", skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to process (required)")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent workers")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write one result JSON per document here")
	return cmd
}

// collectJobs walks a directory for supported files, deduplicating by
// content hash so re-running a batch skips byte-identical documents.
func collectJobs(dir string, logger *slog.Logger) ([]async.Job, int, error) {
	var jobs []async.Job
	skipped := 0
	seen := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if constants.MapExtToFormat(filepath.Ext(path)) == "" {
			return nil
		}
		sum, err := hashFile(path)
		if err != nil {
			logger.Warn("hash failed, skipping", "path", path, "error", err)
			return nil
		}
		if prev, dup := seen[sum]; dup {
			logger.Info("duplicate content, skipping", "path", path, "duplicate_of", prev)
			skipped++
			return nil
		}
		seen[sum] = path
		jobs = append(jobs, async.Job{Path: path})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", dir, err)
	}
	return jobs, skipped, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeResultJSON(res *extract.DocumentExtractionResult, outPath string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if outPath == "" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, b, 0o644)
}
