package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/models"
	"github.com/david/studio-desk/internal/workflow"
	"github.com/spf13/cobra"
)

func newOpportunityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunity",
		Aliases: []string{"opportunities", "opp"},
		Short:   "Track funding opportunities and import them from calls",
	}
	cmd.AddCommand(
		newOpportunityListCommand(),
		newOpportunityAddCommand(),
		newOpportunityStatusCommand(),
		newImportTextCommand(),
		newImportFileCommand(),
		newImportURLCommand(),
	)
	return cmd
}

func newOpportunityListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List opportunities by deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			opps, err := desk.LoadOpportunities(cmd.Context())
			if err != nil {
				return err
			}
			renderOpportunities(cmd.OutOrStdout(), opps)
			return nil
		},
	}
}

func newOpportunityAddCommand() *cobra.Command {
	var in client.CreateOpportunity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an opportunity by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			opp, err := desk.CreateOpportunity(cmd.Context(), in)
			if err != nil {
				return err
			}
			renderOpportunities(cmd.OutOrStdout(), []models.Opportunity{*opp})
			return nil
		},
	}
	cmd.Flags().StringVar(&in.FunderName, "funder", "", "funder name")
	cmd.Flags().StringVar(&in.ProgrammeName, "programme", "", "programme name")
	cmd.Flags().StringVar(&in.Deadline, "deadline", "", "deadline, e.g. 2025-06-01 or \"1 June 2025\"")
	cmd.MarkFlagRequired("funder")    // nolint: errcheck
	cmd.MarkFlagRequired("programme") // nolint: errcheck
	cmd.MarkFlagRequired("deadline")  // nolint: errcheck
	return cmd
}

func newOpportunityStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "status <opportunity-id> <status>",
		Short:     "Set status to \"To Review\", Pursuing, Submitted, Rejected or Awarded",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"To Review", "Pursuing", "Submitted", "Rejected", "Awarded"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("opportunity", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			opp, err := desk.SetOpportunityStatus(cmd.Context(), id, models.FundingStatus(args[1]))
			if err != nil {
				return err
			}
			renderOpportunities(cmd.OutOrStdout(), []models.Opportunity{*opp})
			return nil
		},
	}
}

func newImportTextCommand() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "import-text",
		Short: "Extract opportunities from pasted text (stdin when --text is empty)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			res, err := desk.Importer().FromText(cmd.Context(), text)
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text of the funding call")
	return cmd
}

func newImportFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-file <path>",
		Short: "Extract opportunities from a .pdf, .txt or .md file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			res, err := desk.Importer().FromFile(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	}
}

func newImportURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-url <url>",
		Short: "Have the server read a funder's page and extract opportunities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			res, err := desk.Importer().FromURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	}
}

func printImport(cmd *cobra.Command, res workflow.ImportResult) {
	if res.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "No opportunities found.")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d opportunities.\n", res.Count())
	renderOpportunities(cmd.OutOrStdout(), res.Added)
}
