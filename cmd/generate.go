package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/tsclient"
	"github.com/loamworks/loam/internal/workspace"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate derived artifacts from the project model",
}

var (
	clientOutput string
	clientLang   string
)

var generateClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Generate the TypeScript API client",
	Long: `Introspect the project and emit a typed TypeScript client covering every
entity's CRUD operations and every resolvable relation traversal. The
output lands in the workspace's webapp target when one is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if clientLang != "typescript" {
			return fmt.Errorf("unsupported client language %q (only typescript)", clientLang)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		apiRoot, err := workspace.ResolveAPIRoot(cwd)
		if err != nil {
			return err
		}

		model, issues := introspect.Scan(apiRoot)
		for _, iss := range issues {
			fmt.Fprintf(os.Stderr, "warning: skipped %s\n", iss)
		}
		if len(model.Entities) == 0 {
			return fmt.Errorf("no entities found under %s", apiRoot)
		}

		code, err := tsclient.Emit(model)
		if err != nil {
			return err
		}

		output := clientOutput
		if output == "" {
			output = defaultClientOutput(cwd)
		}

		w := newWriter()
		if err := w.MkdirAll(filepath.Dir(output)); err != nil {
			return err
		}
		if original, readErr := os.ReadFile(output); readErr == nil {
			err = w.UpdateFile(output, string(original), code)
		} else {
			err = w.WriteFile(output, code)
		}
		if err != nil {
			return err
		}
		finishWriter(w)
		if !dryRun {
			fmt.Printf("generated client for %d entities at %s\n", len(model.Entities), output)
		}
		return nil
	},
}

// defaultClientOutput places the client inside the workspace's webapp
// target when one is configured, else in the current directory.
func defaultClientOutput(cwd string) string {
	if root, ok := workspace.FindRoot(cwd); ok {
		if cfg, err := workspace.Load(filepath.Join(root, workspace.ConfigFile)); err == nil {
			if target := cfg.WebappTarget(); target != nil {
				return filepath.Join(root, target.Path, "src", "api-client.ts")
			}
		}
	}
	return filepath.Join(cwd, "api-client.ts")
}

func init() {
	generateClientCmd.Flags().StringVarP(&clientOutput, "output", "o", "", "Output path for the generated client")
	generateClientCmd.Flags().StringVar(&clientLang, "lang", "typescript", "Client language to emit")
	generateCmd.AddCommand(generateClientCmd)
	rootCmd.AddCommand(generateCmd)
}
