package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/workspace"
)

var (
	targetFramework string
	targetName      string
)

var addTargetCmd = &cobra.Command{
	Use:   "target [type]",
	Short: "Scaffold a deployment target in the workspace",
	Long: `Scaffold a deployment target directory and record it in loam.yaml:
webapp (a vite SPA proxying to the api port) or desktop (a Tauri shell
wrapping the webapp). The generated client lands in the webapp target once
one exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, ok := workspace.FindRoot(cwd)
		if !ok {
			return fmt.Errorf("not inside a loam workspace: no %s found above %s", workspace.ConfigFile, cwd)
		}

		spec := scaffold.NewTargetSpec(args[0], targetFramework, targetName)
		w := newWriter()
		if err := scaffold.AddTarget(w, root, spec); err != nil {
			return err
		}
		finishWriter(w)
		if !dryRun {
			fmt.Printf("added %s target at %s\n", spec.Type, spec.Dir)
			if spec.Type == workspace.TargetWebapp {
				fmt.Printf("  cd %s && npm install && npm run dev\n", spec.Dir)
			}
		}
		return nil
	},
}

func init() {
	addTargetCmd.Flags().StringVar(&targetFramework, "framework", "react", "Frontend framework for the webapp target")
	addTargetCmd.Flags().StringVar(&targetName, "name", "", "Directory for the target (defaults per type)")
	addCmd.AddCommand(addTargetCmd)
}
