package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/workspace"
)

var (
	linkType        string
	forwardRoute    string
	reverseRoute    string
	linkDescription string
)

var addLinkCmd = &cobra.Command{
	Use:   "link [source] [target]",
	Short: "Record a typed relation between two entities",
	Long: `Record a link in config/links.yaml and declare both endpoints in its
entities section. Route names default to the pluralized target (forward)
and the source name (reverse).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		apiRoot, err := workspace.ResolveAPIRoot(cwd)
		if err != nil {
			return err
		}

		l := scaffold.NewLink(args[0], args[1], linkType, forwardRoute, reverseRoute, linkDescription)
		w := newWriter()
		if err := scaffold.AddLink(w, apiRoot, l); err != nil {
			return err
		}
		finishWriter(w)
		if !dryRun {
			fmt.Printf("recorded link %s from %s to %s\n", l.LinkType, l.Source, l.Target)
		}
		return nil
	},
}

func init() {
	addLinkCmd.Flags().StringVar(&linkType, "type", "", "Relation type (defaults to has_<target>)")
	addLinkCmd.Flags().StringVar(&forwardRoute, "forward-route", "", "Forward traversal route name")
	addLinkCmd.Flags().StringVar(&reverseRoute, "reverse-route", "", "Reverse traversal route name")
	addLinkCmd.Flags().StringVar(&linkDescription, "description", "", "Human-readable note stored with the link")
	addCmd.AddCommand(addLinkCmd)
}
