package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/scaffold"
)

var (
	initPort int
	initPath string
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new loam-rs workspace",
	Long: `Create a new workspace directory containing a loam.yaml marker and a
ready-to-build api backend with all generation anchors in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := scaffold.NewProject(args[0], initPort)
		target := initPath
		if target == "" {
			target = p.Name
		}
		dir, err := filepath.Abs(target)
		if err != nil {
			return err
		}

		w := newWriter()
		if err := scaffold.CreateProject(w, dir, p); err != nil {
			return err
		}
		finishWriter(w)
		if !dryRun {
			fmt.Printf("created workspace %s\n", dir)
			fmt.Printf("  cd %s && cargo run   # serve on port %d\n", filepath.Join(target, "api"), p.Port)
			fmt.Printf("  loam add entity <name> --fields name:Type,...\n")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().IntVar(&initPort, "port", 3000, "Port the generated server binds to")
	initCmd.Flags().StringVar(&initPath, "path", "", "Directory to create the workspace in (defaults to the project name)")
	rootCmd.AddCommand(initCmd)
}
