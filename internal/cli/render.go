package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/config"
	"github.com/rohmanhakim/ssr-renderer/internal/postprocess"
	"github.com/rohmanhakim/ssr-renderer/internal/renderer"
	"github.com/rohmanhakim/ssr-renderer/pkg/failure"
	"github.com/rohmanhakim/ssr-renderer/pkg/fileutil"
	"github.com/rohmanhakim/ssr-renderer/pkg/retry"
	"github.com/rohmanhakim/ssr-renderer/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	format      string
	selectQuery string
	retries     int
	outputPath  string
)

var (
	renderBackoff = timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 5*time.Second)
	renderJitter  = 200 * time.Millisecond
)

var renderCmd = &cobra.Command{
	Use:   "render URL",
	Short: "Render one page and print it",
	Example: `  ssr render https://example.com
  ssr render https://example.com --dom-target '#app' --format markdown
  ssr render https://example.com --select 'main article' --retries 2
  ssr render https://example.com -o page.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&format, "format", "", "output format: html, markdown or text (default html)")
	renderCmd.Flags().StringVar(&selectQuery, "select", "", "print only the elements matching this CSS selector")
	renderCmd.Flags().IntVar(&retries, "retries", 0, "extra attempts after a timeout or navigation failure")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to this file instead of stdout; its extension picks the format unless --format is set")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	formatName := format
	if formatName == "" && outputPath != "" {
		if _, err := postprocess.ParseFormat(fileutil.Extension(outputPath)); err == nil {
			formatName = fileutil.Extension(outputPath)
		}
	}
	outputFormat, err := postprocess.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", config.ErrInvalidConfig)
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()

	r := newRenderer(cfg, logger)
	if err := r.Start(ctx, cfg.Engine()); err != nil {
		return err
	}
	defer func() {
		if err := r.Stop(ctx); err != nil {
			logger.Warn().Err(err).Msg("browser did not stop cleanly")
		}
	}()

	retryParam := retry.NewRetryParam(
		renderJitter,
		time.Now().UnixNano(),
		retries+1,
		renderBackoff,
	)
	result := retry.Retry(ctx, retryParam, func() (renderer.Result, failure.ClassifiedError) {
		res, err := r.Render(ctx, args[0], cfg.Render())
		if err != nil {
			return res, classify(err)
		}
		return res, nil
	})
	if result.IsFailure() {
		return result.Err()
	}

	rendered := result.Value()
	out, err := postprocess.Apply(rendered.HTML(), selectQuery, outputFormat)
	if err != nil {
		return err
	}

	logger.Info().
		Str("url", rendered.URL()).
		Str("title", out.Title()).
		Dur("duration", rendered.RenderingTime()).
		Int("attempts", result.Attempts()).
		Msg("page rendered")

	if outputPath != "" {
		if err := fileutil.WriteFile(outputPath, []byte(out.Content())); err != nil {
			return err
		}
		logger.Info().Str("path", outputPath).Str("format", string(out.Format())).Msg("output written")
		return nil
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Content())
	return err
}

type unclassifiedError struct {
	err error
}

func (e *unclassifiedError) Error() string {
	return e.err.Error()
}

func (e *unclassifiedError) Unwrap() error {
	return e.err
}

func (e *unclassifiedError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func classify(err error) failure.ClassifiedError {
	var classified failure.ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	return &unclassifiedError{err: err}
}
