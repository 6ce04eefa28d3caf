package commands

import (
	"fmt"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/models"
	"github.com/spf13/cobra"
)

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show counts, recent work and the nearest deadlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			stats, err := desk.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			renderDashboard(cmd.OutOrStdout(), *stats)
			return nil
		},
	}
}

func newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "List, create and update projects",
	}
	cmd.AddCommand(
		newProjectListCommand(),
		newProjectCreateCommand(),
		newProjectStatusCommand(),
		newClearCommand(),
	)
	return cmd
}

func newProjectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			projects, err := desk.LoadProjects(cmd.Context())
			if err != nil {
				return err
			}
			renderProjects(cmd.OutOrStdout(), projects)
			return nil
		},
	}
}

func newProjectCreateCommand() *cobra.Command {
	var start, printDeadline string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a project in Planning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.CreateProject{Title: args[0]}
			var err error
			if in.StartDate, err = optionalDate("start", start); err != nil {
				return err
			}
			if in.PrintDeadline, err = optionalDate("print-deadline", printDeadline); err != nil {
				return err
			}

			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			p, err := desk.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			renderProjects(cmd.OutOrStdout(), []models.Project{*p})
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&printDeadline, "print-deadline", "", "print deadline (YYYY-MM-DD)")
	return cmd
}

func optionalDate(flag, raw string) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}

func newProjectStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "status <project-id> <status>",
		Short:     "Move a project to Planning, \"In Progress\", Review or Completed",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"Planning", "In Progress", "Review", "Completed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			p, err := desk.SetProjectStatus(cmd.Context(), id, models.ProjectStatus(args[1]))
			if err != nil {
				return err
			}
			renderProjects(cmd.OutOrStdout(), []models.Project{*p})
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every project, asset, opportunity and application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear all data without --yes")
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			if err := desk.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
