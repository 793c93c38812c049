package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"uyadmin.io/cli/internal/core/domain"
)

func newPropertyCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"properties", "schedule"},
		Short:   "Manage property listings",
	}

	cmd.AddCommand(newPropertyListCommand(container))
	cmd.AddCommand(newPropertyGetCommand(container))
	cmd.AddCommand(newPropertyCreateCommand(container))
	cmd.AddCommand(newPropertyUpdateCommand(container))
	cmd.AddCommand(newPropertyDeleteCommand(container))

	return cmd
}

func newPropertyListCommand(container *CLIContainer) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := container.Properties.List(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				filtered := properties[:0]
				for _, p := range properties {
					if string(p.Status) == status {
						filtered = append(filtered, p)
					}
				}
				properties = filtered
			}

			rows := make([][]string, 0, len(properties))
			for _, p := range properties {
				rows = append(rows, propertyRow(p))
			}
			return render(cmd, properties, propertyHeaders, rows)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show properties with this status (active, inactive)")
	return cmd
}

func newPropertyGetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := container.Properties.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderFields(cmd, p, propertyFields(*p))
		},
	}
}

func newPropertyCreateCommand(container *CLIContainer) *cobra.Command {
	var form domain.PropertyForm
	var status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a property",
		Example: `  uyadmin property create --title "2-room flat" --description "Near metro" \
    --price 85000 --location Tashkent --category 3 --image1 ./front.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Status = domain.PropertyStatus(status)
			p, err := container.Properties.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Created property %d", p.ID)
			return renderFields(cmd, p, propertyFields(*p))
		},
	}

	bindPropertyFlags(cmd, &form, &status, string(domain.StatusActive))
	return cmd
}

func newPropertyUpdateCommand(container *CLIContainer) *cobra.Command {
	var form domain.PropertyForm
	var status string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a property; omitted flags stay unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form.Status = domain.PropertyStatus(status)
			patch := domain.PropertyPatch(form)
			if len(patch.Form().Fields()) == 0 && !patch.Form().HasImages() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			p, err := container.Properties.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Updated property %d", p.ID)
			return renderFields(cmd, p, propertyFields(*p))
		},
	}

	bindPropertyFlags(cmd, &form, &status, "")
	return cmd
}

func newPropertyDeleteCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := container.Properties.Delete(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted property %d", id)
			return nil
		},
	}
}

func bindPropertyFlags(cmd *cobra.Command, form *domain.PropertyForm, status *string, defaultStatus string) {
	f := cmd.Flags()
	f.StringVar(&form.Title, "title", "", "Title")
	f.StringVar(&form.Description, "description", "", "Description")
	f.StringVar(&form.Price, "price", "", "Price")
	f.StringVar(&form.Location, "location", "", "Location")
	f.StringVar(&form.Category, "category", "", "Category ID")
	f.StringVar(status, "status", defaultStatus, "Status (active, inactive)")
	f.StringVar(&form.Image1, "image1", "", "Path of the first image")
	f.StringVar(&form.Image2, "image2", "", "Path of the second image")
}

var propertyHeaders = []string{"ID", "TITLE", "PRICE", "LOCATION", "CATEGORY", "STATUS", "CREATED"}

func propertyRow(p domain.Property) []string {
	return []string{
		strconv.Itoa(p.ID),
		truncateString(p.Title, 32),
		p.Price,
		truncateString(p.Location, 24),
		strconv.Itoa(p.Category),
		statusLabel(p.Status),
		formatTime(p.CreatedAt),
	}
}

func propertyFields(p domain.Property) [][2]string {
	owner := ""
	if p.User != nil {
		owner = p.User.Username
	}
	return [][2]string{
		{"id", strconv.Itoa(p.ID)},
		{"title", p.Title},
		{"description", p.Description},
		{"price", p.Price},
		{"location", p.Location},
		{"category", strconv.Itoa(p.Category)},
		{"status", statusLabel(p.Status)},
		{"owner", owner},
		{"image1", optional(p.Image1)},
		{"image2", optional(p.Image2)},
		{"created", formatTime(p.CreatedAt)},
	}
}

func statusLabel(s domain.PropertyStatus) string {
	if s == domain.StatusActive {
		return activeStyle.Render(string(s))
	}
	return mutedStyle.Render(string(s))
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}
