package cli

import "github.com/spf13/cobra"

// NewRootCommand assembles the CLI.
func NewRootCommand(version string) *cobra.Command {
	root := NewValidateCommand()
	root.Version = version
	root.AddCommand(NewSchemaCommand())
	return root
}
