package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ddddddO/gtree"
	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/markers"
	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/workspace"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the introspected project model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		apiRoot, err := workspace.ResolveAPIRoot(cwd)
		if err != nil {
			return err
		}

		model, issues := introspect.Scan(apiRoot)
		if infoJSON {
			fmt.Println(model.JSON())
		} else if err := printModelTree(apiRoot, model); err != nil {
			return err
		}
		for _, iss := range issues {
			fmt.Fprintf(os.Stderr, "warning: %s\n", iss)
		}
		return nil
	},
}

// printModelTree renders the model as a tree: entities with their fields
// and routes, then relations.
func printModelTree(apiRoot string, model *introspect.ProjectModel) error {
	root := gtree.NewRoot(apiRoot)

	entities := root.Add(fmt.Sprintf("entities (%d)", len(model.Entities)))
	for _, e := range model.Entities {
		label := fmt.Sprintf("%s (%s, /%s)", e.Name, e.Pascal, e.Plural)
		if !registered(apiRoot, e.Name) {
			label += " [not registered]"
		}
		node := entities.Add(label)
		fields := node.Add("fields")
		for _, f := range e.Fields {
			label := f.Name + ": " + f.Type
			if f.Optional {
				label += "?"
			}
			for _, idx := range e.IndexedFields {
				if idx == f.Name {
					label += " [indexed]"
				}
			}
			fields.Add(label)
		}
		if len(e.Routes) > 0 {
			routes := node.Add("routes")
			for _, r := range e.Routes {
				routes.Add(r.Method + " " + r.Path)
			}
		}
	}

	if len(model.Relations) > 0 {
		relations := root.Add(fmt.Sprintf("relations (%d)", len(model.Relations)))
		for _, r := range model.Relations {
			relations.Add(fmt.Sprintf("%s -[%s]-> %s (/%s)", r.Source, r.LinkType, r.Target, r.ForwardRoute))
		}
	}

	return gtree.OutputProgrammably(os.Stdout, root)
}

// registered reports whether an entity appears under every probeable anchor
// in the generated module and stores files.
func registered(apiRoot, name string) bool {
	e := scaffold.NewEntity(name, nil, nil, false)
	for _, role := range []markers.FileRole{markers.RoleModule, markers.RoleStores} {
		data, err := os.ReadFile(filepath.Join(apiRoot, role.Path()))
		if err != nil {
			return false
		}
		for _, a := range markers.Catalog {
			if a.Role != role {
				continue
			}
			if _, err := markers.Locate(string(data), a.Token); err != nil {
				continue
			}
			_, needle := e.AnchorLine(a.Name)
			if !markers.HasLineAfter(string(data), a.Token, needle) {
				return false
			}
		}
	}
	return true
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Emit the model as JSON")
	rootCmd.AddCommand(infoCmd)
}
