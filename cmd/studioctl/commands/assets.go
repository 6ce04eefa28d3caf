package commands

import (
	"fmt"

	"github.com/david/studio-desk/internal/models"
	"github.com/spf13/cobra"
)

func newAssetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "asset",
		Aliases: []string{"assets"},
		Short:   "Index media folders and track usage rights",
	}
	cmd.AddCommand(newAssetScanCommand(), newAssetListCommand(), newAssetRightsCommand())
	return cmd
}

func newAssetScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <project-id> <directory>",
		Short: "Index photos, audio and PDFs under a directory on the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			created, err := desk.ScanDirectory(cmd.Context(), projectID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new assets, %d indexed for this project\n",
				len(created), len(desk.Assets.Filter(func(a models.Asset) bool { return a.ProjectID == projectID })))
			if len(created) > 0 {
				renderAssets(cmd.OutOrStdout(), created)
			}
			return nil
		},
	}
}

func newAssetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the assets of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			assets, err := desk.LoadAssets(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			renderAssets(cmd.OutOrStdout(), assets)
			return nil
		},
	}
}

func newAssetRightsCommand() *cobra.Command {
	var credit string

	cmd := &cobra.Command{
		Use:       "rights <asset-id> <status>",
		Short:     "Set rights to Unknown, Requested, Cleared or Restricted",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"Unknown", "Requested", "Cleared", "Restricted"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("asset", args[0])
			if err != nil {
				return err
			}
			var creditLine *string
			if cmd.Flags().Changed("credit") {
				creditLine = &credit
			}

			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			a, err := desk.SetAssetRights(cmd.Context(), id, models.RightsStatus(args[1]), creditLine)
			if err != nil {
				return err
			}
			renderAssets(cmd.OutOrStdout(), []models.Asset{*a})
			return nil
		},
	}
	cmd.Flags().StringVar(&credit, "credit", "", "credit line to print with the asset (empty clears it)")
	return cmd
}
