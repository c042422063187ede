// backuper is the command-line front end of the backup engine.
//
//	backuper backup  --source DIR --dest DIR
//	backuper runs    --dest DIR
//	backuper index   --dest DIR [--prefix P]
//	backuper restore --dest DIR --target DIR
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	backup "github.com/AmrMurad1/Go-Backup"
	"github.com/AmrMurad1/Go-Backup/config"
	"github.com/AmrMurad1/Go-Backup/logger"
	"github.com/AmrMurad1/Go-Backup/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, shared.ErrInvalidConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	logLevel    string
	metricsFile string
	source      string
	dest        string
	target      string
	prefix      string
	quiet       bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	command := args[0]

	var opts options
	fs := pflag.NewFlagSet("backuper "+command, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after a backup")
	fs.StringVarP(&opts.dest, "dest", "d", "", "backup destination directory")
	switch command {
	case "backup":
		fs.StringVarP(&opts.source, "source", "s", "", "directory to back up")
		fs.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print per-file progress")
	case "index":
		fs.StringVar(&opts.prefix, "prefix", "", "only list paths with this prefix")
	case "restore":
		fs.StringVarP(&opts.target, "target", "t", "", "directory to restore into")
	case "runs":
	default:
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", shared.ErrInvalidConfiguration, command)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfiguration, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}

	engine, err := backup.NewEngine(cfg, backup.WithLogger(logger.New(stderr, cfg.LogLevel)))
	if err != nil {
		return err
	}

	switch command {
	case "backup":
		return runBackup(ctx, engine, opts, stdout)
	case "runs":
		return runRuns(engine, opts, stdout)
	case "index":
		return runIndex(engine, opts, stdout)
	default:
		return runRestore(ctx, engine, opts, stdout)
	}
}

func runBackup(ctx context.Context, engine *backup.Engine, opts options, stdout io.Writer) error {
	progress := func(p shared.Progress) {
		if opts.quiet {
			return
		}
		if p.Done {
			fmt.Fprintln(stdout, "100% done")
			return
		}
		fmt.Fprintf(stdout, "%3d%% %s\n", p.Percent(), p.Path)
	}

	summary, err := engine.Backup(ctx, opts.source, opts.dest, progress)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run %s: %d files, %d written, %d unchanged, %d bytes in %s\n",
		summary.Run, summary.Files, summary.Written, summary.Skipped, summary.Bytes, summary.Duration.Round(time.Millisecond))
	return nil
}

func runRuns(engine *backup.Engine, opts options, stdout io.Writer) error {
	runs, err := engine.Runs(opts.dest)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s\t%d segments\t%d records\t%d bytes\n", r.Name, r.Segments, r.Records, r.Bytes)
	}
	return nil
}

func runIndex(engine *backup.Engine, opts options, stdout io.Writer) error {
	entries, err := engine.Index(opts.dest, opts.prefix)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%016x\t%s\t%d\t%s\n", e.Checksum, e.Run, e.Size, e.Path)
	}
	return nil
}

func runRestore(ctx context.Context, engine *backup.Engine, opts options, stdout io.Writer) error {
	n, err := engine.Restore(ctx, opts.dest, opts.target)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "restored %d files into %s\n", n, opts.target)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: backuper <command> [flags]

commands:
  backup   --source DIR --dest DIR   append changed files to a new run
  runs     --dest DIR                list runs in a destination
  index    --dest DIR [--prefix P]   show the reconstructed index
  restore  --dest DIR --target DIR   write the indexed version of every file

common flags:
  -c, --config FILE        YAML config file
      --log-level LEVEL    debug, info, warn or error
      --metrics-file FILE  Prometheus textfile output
`)
}
