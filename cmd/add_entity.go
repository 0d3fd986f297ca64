package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/workspace"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add entities and links to the current project",
}

var (
	entityFields    string
	entityIndexed   string
	entityValidated bool
)

var addEntityCmd = &cobra.Command{
	Use:   "entity [name]",
	Short: "Generate an entity and wire it into the project",
	Long: `Generate the entity's model, store, handlers, and descriptor under
src/entities/<name>, then register it at every insertion anchor in
src/module.rs and src/stores.rs. Files whose anchors have been removed are
reported with the lines to add by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := scaffold.ParseFields(entityFields)
		if err != nil {
			return err
		}
		var indexed []string
		if entityIndexed != "" {
			for _, f := range strings.Split(entityIndexed, ",") {
				indexed = append(indexed, strings.TrimSpace(f))
			}
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		apiRoot, err := workspace.ResolveAPIRoot(cwd)
		if err != nil {
			return err
		}

		e := scaffold.NewEntity(args[0], fields, indexed, entityValidated)
		w := newWriter()
		if err := scaffold.CreateEntity(w, apiRoot, e); err != nil {
			return err
		}
		reg, err := scaffold.RegisterEntity(w, apiRoot, e)
		if err != nil {
			return err
		}
		finishWriter(w)

		if !dryRun {
			fmt.Printf("created entity %q\n", e.Name)
			for _, a := range reg.Applied {
				fmt.Printf("  registered %s\n", a)
			}
		}
		for _, lf := range reg.Legacy {
			fmt.Printf("\n%s could not be updated automatically; add these lines by hand:\n", lf.Path)
			for _, line := range lf.Lines {
				fmt.Printf("    %s\n", line)
			}
		}
		return nil
	},
}

func init() {
	addEntityCmd.Flags().StringVar(&entityFields, "fields", "", "Comma-separated fields, e.g. sku:String,price:f64,note:Option<String>")
	addEntityCmd.Flags().StringVar(&entityIndexed, "indexed", "", "Comma-separated field names to index")
	addEntityCmd.Flags().BoolVar(&entityValidated, "validated", false, "Generate the validated entity variant")
	addCmd.AddCommand(addEntityCmd)
	rootCmd.AddCommand(addCmd)
}
