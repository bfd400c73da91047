package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/formwire/internal/config"
	"github.com/torosent/formwire/internal/formdata"
	"github.com/torosent/formwire/internal/httpclient"
	"github.com/torosent/formwire/internal/logging"
	"github.com/torosent/formwire/internal/metrics"
	"github.com/torosent/formwire/internal/openai"
	"github.com/torosent/formwire/internal/output"
	"github.com/torosent/formwire/internal/tracing"
)

const (
	progressInterval = 250 * time.Millisecond
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	form, err := buildForm(cfg.Form, stdin, logger)
	if err != nil {
		return err
	}

	if cfg.Dump {
		return dump(form, stdout)
	}

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "err", err)
		}
	}()

	collector := metrics.NewCollector()
	client, err := openai.NewFromConfig(cfg,
		openai.WithCollector(collector),
		openai.WithTracer(tp.Tracer()),
		openai.WithLogger(logger),
		openai.WithRetryPolicy(newRetryPolicy(cfg.Retries)),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, sendErr := send(ctx, client, cfg, form, stderr)
	elapsed := time.Since(start)

	if cfg.Stats {
		stats := collector.Stats(elapsed)
		if cfg.JSONOutput {
			if err := output.PrintJSONReport(stderr, stats); err != nil {
				return err
			}
		} else {
			output.PrintReport(stderr, stats)
		}
	}

	if sendErr != nil {
		return sendErr
	}
	return writeResponse(stdout, resp, cfg.Extract)
}

// send uploads the form once, or issues a plain request when there are no
// fields. Body-less GETs go through the retrying path.
func send(ctx context.Context, client *openai.Client, cfg *config.Config, form *formdata.Form, progressOut io.Writer) ([]byte, error) {
	if form.Len() == 0 {
		if cfg.Method == http.MethodGet {
			return client.Get(ctx, cfg.Target)
		}
		return client.Send(ctx, cfg.Method, cfg.Target, nil)
	}

	body, err := form.Prepare()
	if err != nil {
		return nil, err
	}
	counted := httpclient.NewCountingBody(body)

	if cfg.Progress {
		length, known := body.ContentLength()
		progress := output.NewProgressReporter(counted, length, known, progressInterval, progressOut)
		progress.Start()
		defer progress.Stop()
	}

	return client.Send(ctx, cfg.Method, cfg.Target, counted)
}

func dump(form *formdata.Form, w io.Writer) error {
	body, err := form.Prepare()
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("dump body: %w", err)
	}
	return nil
}
