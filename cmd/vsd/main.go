package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/famomatic/vsd/client"
	"github.com/famomatic/vsd/internal/cli"
	"github.com/famomatic/vsd/internal/downloader"
	"github.com/famomatic/vsd/internal/muxer"
	"github.com/famomatic/vsd/internal/orchestrator"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes one save invocation. A nil assembler means the default one.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, assembler *orchestrator.Assembler) int {
	opts, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if opts.Help {
		cli.Usage(stdout)
		return 0
	}
	if opts.Version {
		fmt.Fprintf(stdout, "vsd %s\n", version)
		return 0
	}

	logger := newLogger(stderr, opts.Verbose)

	if err := opts.Validate(muxer.NewLocator()); err != nil {
		return fail(stderr, err)
	}
	req := cli.ToRequest(opts)
	logger.Debugf("request: input=%s quality=%s threads=%d keys=%d", req.Input, req.Quality, req.Threads, len(req.Keys))

	if assembler == nil {
		assembler = &orchestrator.Assembler{}
	}
	if assembler.Logger == nil {
		assembler.Logger = logger
	}
	task, err := assembler.Assemble(ctx, req)
	if err != nil {
		return fail(stderr, err)
	}

	var engine downloader.Engine = &downloader.ReportEngine{Out: stdout, JSON: opts.PrintJSON}
	if err := engine.Run(ctx, task); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func fail(w io.Writer, err error) int {
	fmt.Fprintln(w, formatError(err))
	return 1
}

func formatError(err error) string {
	return fmt.Sprintf("error [%s]: %v", client.ClassifyError(err), err)
}
