package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/david/studio-desk/internal/workflow"
	"github.com/spf13/cobra"
)

func newApplicationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "application",
		Aliases: []string{"app"},
		Short:   "Draft and approve application packages",
	}
	cmd.AddCommand(
		newApplicationCreateCommand(),
		newApplicationShowCommand(),
		newApplicationSaveCommand(),
		newApplicationSubmitCommand(),
	)
	return cmd
}

func newApplicationCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <opportunity-id>",
		Short: "Start the application package for an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oppID, err := parseID("opportunity", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			ed, err := desk.CreateApplication(cmd.Context(), oppID)
			if err != nil {
				return err
			}
			renderApplication(cmd.OutOrStdout(), ed.Snapshot())
			return nil
		},
	}
}

func newApplicationShowCommand() *cobra.Command {
	var byOpportunity bool

	cmd := &cobra.Command{
		Use:   "show <application-id>",
		Short: "Print an application package with its budget total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := openApplication(cmd, args[0], byOpportunity)
			if err != nil {
				return err
			}
			renderApplication(cmd.OutOrStdout(), ed.Snapshot())
			return nil
		},
	}
	cmd.Flags().BoolVar(&byOpportunity, "opportunity", false, "treat the id as an opportunity id")
	return cmd
}

func newApplicationSaveCommand() *cobra.Command {
	var narrative, budget string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "save <application-id>",
		Short: "Save the narrative and budget of a Draft package",
		Long: `Save the narrative and budget of a Draft package.

The budget is a JSON object of category to amount, for example
'{"personnel": 1000, "equipment": 500}'. Amounts must not be negative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := openApplication(cmd, args[0], false)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("narrative") && ed.Snapshot().NarrativeDraft != nil {
				narrative = *ed.Snapshot().NarrativeDraft
			}
			if !cmd.Flags().Changed("budget") {
				current, err := json.Marshal(ed.Snapshot().BudgetJSON)
				if err != nil {
					return err
				}
				budget = string(current)
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Budget total: %.2f\n", workflow.BudgetTotalOf(budget))
				return nil
			}

			if _, err := ed.SaveDraft(cmd.Context(), narrative, budget); err != nil {
				if errors.Is(err, workflow.ErrApplicationLocked) {
					return fmt.Errorf("application is %s; narrative and budget are locked", ed.Snapshot().SubmissionStatus)
				}
				return err
			}
			renderApplication(cmd.OutOrStdout(), ed.Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVar(&narrative, "narrative", "", "narrative text (kept when omitted)")
	cmd.Flags().StringVar(&budget, "budget", "", "budget as a JSON object (kept when omitted)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the budget total without saving")
	return cmd
}

func newApplicationSubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <application-id>",
		Short: "Submit a Draft package for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := openApplication(cmd, args[0], false)
			if err != nil {
				return err
			}
			if _, err := ed.SubmitForApproval(cmd.Context()); err != nil {
				return err
			}
			renderApplication(cmd.OutOrStdout(), ed.Snapshot())
			return nil
		},
	}
}

func openApplication(cmd *cobra.Command, raw string, byOpportunity bool) (*workflow.ApplicationEditor, error) {
	desk, err := newDesk(cmd)
	if err != nil {
		return nil, err
	}
	if !byOpportunity {
		id, err := parseID("application", raw)
		if err != nil {
			return nil, err
		}
		return desk.OpenApplication(cmd.Context(), id)
	}

	oppID, err := parseID("opportunity", raw)
	if err != nil {
		return nil, err
	}
	ed, ok, err := desk.ApplicationFor(cmd.Context(), oppID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no application for opportunity %s yet; run 'studioctl application create %s'", oppID, oppID)
	}
	return ed, nil
}
