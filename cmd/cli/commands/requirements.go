package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// RequirementsCmd creates the requirements command and its get/set subcommands
func RequirementsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Read or replace a hotel's weekly requirement table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <hotel>",
		Short: "Print a hotel's requirement table as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := services.GetRequirements(app.Ctx, app.Store, app.Logger, args[0])
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(table)
			if err != nil {
				return fmt.Errorf("failed to encode requirements: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <hotel> <file>",
		Short: "Replace a hotel's requirement table from a YAML or JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readRequirements(args[1])
			if err != nil {
				return err
			}

			if err := services.SaveRequirements(app.Ctx, app.Store, app.Logger, args[0], table); err != nil {
				return err
			}

			fmt.Printf("\n✓ Requirements saved for %s (%d shift(s))\n", args[0], len(table))
			return nil
		},
	})

	return cmd
}

// readRequirements parses a requirement table file. JSON files parse as YAML.
func readRequirements(path string) (model.RequirementTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}

	var table model.RequirementTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse requirements file: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: requirements file %s is empty", services.ErrInvalidInput, path)
	}
	return table, nil
}
