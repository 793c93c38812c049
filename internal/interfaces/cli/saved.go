package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newSavedCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved (bookmarked) properties",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := container.Saved.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(saved))
			for _, s := range saved {
				rows = append(rows, []string{
					strconv.Itoa(s.ID),
					strconv.Itoa(s.Schedule.ID),
					truncateString(s.Schedule.Title, 32),
					s.Schedule.Price,
					formatTime(s.SavedAt),
				})
			}
			return render(cmd, saved, []string{"ID", "PROPERTY", "TITLE", "PRICE", "SAVED"}, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add PROPERTY_ID",
		Short: "Save a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			propertyID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := container.Saved.Create(cmd.Context(), propertyID)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Saved property %d (entry %d)", propertyID, s.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Remove a saved entry by its own id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := container.Saved.Delete(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed saved entry %d", id)
			return nil
		},
	})

	return cmd
}
