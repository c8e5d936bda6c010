package cli

import (
	"github.com/spf13/cobra"

	"github.com/workflow-templates/templatelint/pkg/schema"
)

// NewSchemaCommand creates the command that prints the default index schema.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the default JSON Schema of the template index",
		Long: `Print the JSON Schema used by --engine jsonschema when the template root has
no schema document of its own. Redirect it to index.schema.json to start a
custom schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(schema.DefaultSchema)
			return err
		},
	}
}
