package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"uyadmin.io/cli/internal/core/domain"
)

func newCategoryCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage property categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := container.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, truncateString(c.Description, 48)})
			}
			return render(cmd, categories, []string{"ID", "NAME", "DESCRIPTION"}, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := container.Categories.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderFields(cmd, c, [][2]string{
				{"id", strconv.Itoa(c.ID)},
				{"name", c.Name},
				{"description", c.Description},
			})
		},
	})

	cmd.AddCommand(newCategoryCreateCommand(container))
	return cmd
}

func newCategoryCreateCommand(container *CLIContainer) *cobra.Command {
	var form domain.CategoryForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.Categories.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created category %d (%s)", c.ID, c.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Category name")
	cmd.Flags().StringVar(&form.Description, "description", "", "Description")
	return cmd
}
