package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"occupancy/ml"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the feature order and category options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		schema, err := ml.LoadSchemaFile(cfg.Model.SchemaPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d features (%s)\n", schema.Len(), cfg.Model.SchemaPath)
		for _, name := range schema.Names() {
			fmt.Fprintf(out, "  %s\n", name)
		}
		for _, group := range schema.Groups() {
			fmt.Fprintf(out, "%s [%s]: %s\n", group.Name, group.Prefix, strings.Join(group.Members(), ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
