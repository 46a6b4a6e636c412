package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psantana5/loadtime/internal/observe"
	"github.com/psantana5/loadtime/internal/report"
	"github.com/psantana5/loadtime/pkg/loadtime"
)

var (
	// Common flags for run/attach
	opName        string
	message       string
	noBar         bool
	largeDownload bool
	jsonOutput    bool
	metricsFile   string

	// Attach mode specific
	attachPID int
)

var runCmd = &cobra.Command{
	Use:   "run --name <name> [flags] -- <command> [args...]",
	Short: "Run a command with a progress display",
	Long: `Run spawns the command, forwards its stdin/stdout/stderr and draws a
progress line on stderr until it exits. A successful run records its duration
for the next run of the same name. The command's exit code is returned.

Example:
  loadtime run --name llama-7b -- python load_model.py
  loadtime run --name org/model --large-download -- ./fetch.sh org/model
  loadtime run --name nightly-index --json --metrics-file /var/lib/node_exporter/loadtime.prom -- make index`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

var attachCmd = &cobra.Command{
	Use:   "attach --name <name> --pid <PID>",
	Short: "Show progress while waiting for an already-running process",
	Long: `Attach waits for a process that is already running and draws the same
progress line as run. The process is only observed: no signals, no restarts.
The clock starts at the process creation time, so the stored duration is the
whole process lifetime. If that time cannot be read, the clock starts when
attach starts.

Example:
  loadtime attach --name nightly-index --pid 12345`,
	RunE: attachToProcess,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(attachCmd)

	for _, cmd := range []*cobra.Command{runCmd, attachCmd} {
		cmd.Flags().StringVar(&opName, "name", "", "operation name, used as the storage key (default: command name)")
		cmd.Flags().StringVar(&message, "message", "", "text shown instead of 'Loading \"<name>\" ... '")
		cmd.Flags().BoolVar(&noBar, "no-bar", false, "hide the progress bar and percentage")
		cmd.Flags().BoolVar(&largeDownload, "large-download", false, "stay quiet when the model is not in the Hugging Face cache yet")
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "print a JSON run report to stdout when done")
		cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	}

	attachCmd.Flags().IntVar(&attachPID, "pid", 0, "PID of the process to wait for")
	attachCmd.MarkFlagRequired("pid")
	attachCmd.MarkFlagRequired("name")
}

func runCommand(cmd *cobra.Command, args []string) error {
	name := opName
	if name == "" {
		name = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timer, err := loadtime.New(timerConfig(name), func() (struct{}, error) {
		child := exec.CommandContext(ctx, args[0], args[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		return struct{}{}, child.Run()
	})
	if err != nil {
		return err
	}

	_, runErr := timer.Start()
	if err := writeReports(cmd.OutOrStdout(), timer.Result()); err != nil {
		return err
	}
	return exitErrorFor(runErr)
}

// exitErrorFor maps a child's failure to the exit code loadtime should
// return. A child killed by a signal maps to 128+signal, as shells report it.
func exitErrorFor(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return &ExitError{Code: code}
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return &ExitError{Code: 128 + int(status.Signal())}
	}
	return err
}

func attachToProcess(cmd *cobra.Command, args []string) error {
	if attachPID <= 0 {
		return fmt.Errorf("invalid PID: %d", attachPID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := observe.NewWatcher(attachPID, cfg.UpdateInterval)
	tc := timerConfig(opName)
	if started, err := watcher.StartTime(); err != nil {
		logger.Warn("Process start time unavailable, timing from now", map[string]interface{}{
			"pid":   attachPID,
			"error": err.Error(),
		})
	} else {
		tc.StartTime = started
	}

	timer, err := loadtime.New(tc, func() (int, error) {
		return watcher.PID(), watcher.Wait(ctx)
	})
	if err != nil {
		return err
	}

	_, waitErr := timer.Start()
	if err := writeReports(cmd.OutOrStdout(), timer.Result()); err != nil {
		return err
	}
	if waitErr != nil {
		return fmt.Errorf("failed to attach: %w", waitErr)
	}
	return nil
}

func timerConfig(name string) loadtime.Config {
	dir, err := cfg.StoreDir()
	if err != nil {
		logger.Warn("No cache directory, duration will not be stored", map[string]interface{}{"error": err.Error()})
	}

	return loadtime.Config{
		Name:           name,
		Message:        message,
		HidePercentage: noBar || !cfg.ShowPercentage,
		CacheDir:       dir,
		LargeDownload:  largeDownload,
		Quiet:          !progressEnabled(),
		Output:         func(s string) { fmt.Fprint(os.Stderr, s) },
		UpdateInterval: cfg.UpdateInterval,
		Logger:         logger,
	}
}

// runReport is the --json document: the run plus every overrun seen in
// this process.
type runReport struct {
	*report.Result
	Overruns []report.OverrunSample `json:"overruns"`
}

func writeReports(w io.Writer, result *report.Result) error {
	if result == nil {
		return nil
	}
	result.LogSummary(logger)

	overruns := loadtime.RecentOverruns(0)
	for _, o := range overruns {
		logger.Warn("Run took longer than its estimate", map[string]interface{}{
			"run_id":   o.RunID,
			"name":     o.Name,
			"expected": o.Expected,
			"actual":   o.Actual,
		})
	}

	if metricsFile != "" {
		if err := report.Global().WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	if jsonOutput {
		if overruns == nil {
			overruns = []report.OverrunSample{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runReport{Result: result, Overruns: overruns})
	}
	return nil
}
