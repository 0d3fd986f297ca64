package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/diag"
	"github.com/loamworks/loam/internal/workspace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project's health",
	Long: `Verify the generated file layout, the insertion anchors, every entity's
extractability, each entity's registration wiring, and the resolution of
all configured links. Exits non-zero when any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		apiRoot, err := workspace.ResolveAPIRoot(cwd)
		if err != nil {
			return err
		}

		fmt.Printf("checking %s\n\n", apiRoot)
		report := diag.Examine(apiRoot)
		report.Write(os.Stdout)
		if !report.Healthy() {
			return fmt.Errorf("project has failing checks")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
