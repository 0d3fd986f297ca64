package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/writer"
)

// version is stamped by the release build.
var version = "dev"

var dryRun bool

var rootCmd = &cobra.Command{
	Use:           "loam",
	Short:         "Scaffolding and introspection for loam-rs backend projects",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing anything")
}

// newWriter returns the output writer selected by --dry-run.
func newWriter() writer.Writer {
	if dryRun {
		fmt.Println("dry run, no files will be written:")
		return writer.NewDry(os.Stdout)
	}
	return writer.NewReal()
}

// finishWriter closes out a dry-run with its summary.
func finishWriter(w writer.Writer) {
	if d, ok := w.(*writer.Dry); ok {
		d.Summary()
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
