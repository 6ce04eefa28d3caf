package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/david/studio-desk/internal/workflow"
	"github.com/spf13/cobra"
)

func newSectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "section",
		Aliases: []string{"sections"},
		Short:   "Write and move sections through Draft, Review and Locked",
	}
	cmd.AddCommand(
		newSectionListCommand(),
		newSectionCreateCommand(),
		newSectionShowCommand(),
		newSectionSaveCommand(),
		newSectionReviewCommand(),
	)
	for _, action := range []editorial.Action{editorial.ActionSubmit, editorial.ActionApprove, editorial.ActionReject, editorial.ActionLock} {
		cmd.AddCommand(newSectionTransitionCommand(action))
	}
	return cmd
}

func newSectionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the sections of a project in page order",
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
			sections, err := desk.LoadSections(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			renderSections(cmd.OutOrStdout(), sections)
			return nil
		},
	}
}

func newSectionCreateCommand() *cobra.Command {
	var order int

	cmd := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Add a Draft section to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			var orderIndex *int
			if cmd.Flags().Changed("order") {
				orderIndex = &order
			}

			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			ed, err := desk.CreateSection(cmd.Context(), projectID, args[1], orderIndex)
			if err != nil {
				return err
			}
			printSection(cmd, ed)
			return nil
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "position in the project (defaults to last)")
	return cmd
}

func newSectionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <section-id>",
		Short: "Print a section and the actions it allows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := openSection(cmd, args[0])
			if err != nil {
				return err
			}
			printSection(cmd, ed)
			return nil
		},
	}
}

func newSectionSaveCommand() *cobra.Command {
	var content, file string

	cmd := &cobra.Command{
		Use:   "save <section-id>",
		Short: "Replace the content of a Draft section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}
			ed, err := openSection(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := ed.Save(cmd.Context(), text); err != nil {
				return err
			}
			printSection(cmd, ed)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from a file, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	cmd.MarkFlagsOneRequired("content", "file")
	return cmd
}

func readContent(cmd *cobra.Command, content, file string) (string, error) {
	switch file {
	case "":
		return content, nil
	case "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	default:
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(b), nil
	}
}

func newSectionTransitionCommand(action editorial.Action) *cobra.Command {
	short := map[editorial.Action]string{
		editorial.ActionSubmit:  "Send a Draft section to Review",
		editorial.ActionApprove: "Approve a section in Review and lock it",
		editorial.ActionReject:  "Return a section in Review to Draft",
		editorial.ActionLock:    "Lock a section after consistency checks",
	}[action]

	return &cobra.Command{
		Use:   string(action) + " <section-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("section", args[0])
			if err != nil {
				return err
			}
			desk, err := newDesk(cmd)
			if err != nil {
				return err
			}
			sec, err := desk.ApplySection(cmd.Context(), id, action, "")
			if err != nil {
				return err
			}
			renderSection(cmd.OutOrStdout(), sec, nextActions(sec.Status))
			return nil
		},
	}
}

func newSectionReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review <section-id>",
		Short: "Ask the editorial assistant for feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := openSection(cmd, args[0])
			if err != nil {
				return err
			}
			feedback, err := ed.Review(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), feedback)
			return nil
		},
	}
}

func openSection(cmd *cobra.Command, raw string) (*workflow.SectionEditor, error) {
	id, err := parseID("section", raw)
	if err != nil {
		return nil, err
	}
	desk, err := newDesk(cmd)
	if err != nil {
		return nil, err
	}
	ed, ok, err := desk.OpenSection(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("section %s not found", id)
	}
	return ed, nil
}

func printSection(cmd *cobra.Command, ed *workflow.SectionEditor) {
	snap := ed.Snapshot()
	renderSection(cmd.OutOrStdout(), snap, nextActions(snap.Status))
}

// nextActions names the commands the section's status allows.
func nextActions(status models.SectionStatus) []string {
	var out []string
	for _, a := range editorial.Actions(status) {
		out = append(out, string(a))
	}
	return out
}
