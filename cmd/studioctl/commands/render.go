package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/david/studio-desk/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func dateOrDash(d *models.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}

func renderProjects(w io.Writer, projects []models.Project) {
	t := newTable(w, table.Row{"ID", "Title", "Status", "Start", "Print deadline"})
	for _, p := range projects {
		t.AppendRow(table.Row{p.ID, p.Title, p.Status, dateOrDash(p.StartDate), dateOrDash(p.PrintDeadline)})
	}
	t.Render()
}

func renderSections(w io.Writer, sections []models.Section) {
	t := newTable(w, table.Row{"#", "ID", "Title", "Status", "Version", "Words"})
	for _, s := range sections {
		t.AppendRow(table.Row{s.OrderIndex, s.ID, s.Title, s.Status, s.Version, len(strings.Fields(s.ContentText))})
	}
	t.Render()
}

func renderSection(w io.Writer, s models.Section, actions []string) {
	fmt.Fprintf(w, "%s  v%d  %s\n", s.Title, s.Version, s.Status)
	if len(actions) > 0 {
		fmt.Fprintf(w, "next: %s\n", strings.Join(actions, ", "))
	}
	if s.ContentText != "" {
		fmt.Fprintf(w, "\n%s\n", s.ContentText)
	}
}

func renderAssets(w io.Writer, assets []models.Asset) {
	t := newTable(w, table.Row{"ID", "Type", "File", "Rights", "Credit", "Usage"})
	for _, a := range assets {
		credit := "-"
		if a.CreditLine != nil {
			credit = *a.CreditLine
		}
		t.AppendRow(table.Row{a.ID, a.Type, a.FilePath, a.RightsStatus, credit, a.UsageScope})
	}
	t.Render()
}

func renderOpportunities(w io.Writer, opps []models.Opportunity) {
	t := newTable(w, table.Row{"ID", "Funder", "Programme", "Deadline", "Status", "Amount"})
	for _, o := range opps {
		t.AppendRow(table.Row{o.ID, o.FunderName, o.ProgrammeName, o.Deadline, o.Status, amountOf(o.BudgetRules)})
	}
	t.Render()
}

func amountOf(rules map[string]any) string {
	top, ok := rules["amount_max"]
	if !ok {
		return "-"
	}
	cur, _ := rules["currency"].(string)
	return strings.TrimSpace(fmt.Sprintf("%s %v", cur, top))
}

func renderApplication(w io.Writer, app models.ApplicationPackage) {
	fmt.Fprintf(w, "Application %s  (%s)\n", app.ID, app.SubmissionStatus)
	if app.NarrativeDraft != nil && *app.NarrativeDraft != "" {
		fmt.Fprintf(w, "\n%s\n\n", *app.NarrativeDraft)
	}
	t := newTable(w, table.Row{"Category", "Amount"})
	for category, v := range app.BudgetJSON {
		t.AppendRow(table.Row{category, v})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.2f", app.BudgetJSON.Total())})
	t.SortBy([]table.SortBy{{Name: "Category", Mode: table.Asc}})
	t.Render()
}

func renderDashboard(w io.Writer, stats models.DashboardStats) {
	fmt.Fprintf(w, "Projects: %d  Opportunities: %d  Assets: %d\n\n",
		stats.Counts.Projects, stats.Counts.Opportunities, stats.Counts.Assets)

	if len(stats.UpcomingDeadlines) > 0 {
		fmt.Fprintln(w, "Upcoming deadlines")
		renderOpportunities(w, stats.UpcomingDeadlines)
	}
	if len(stats.RecentProjects) > 0 {
		fmt.Fprintln(w, "Recent projects")
		renderProjects(w, stats.RecentProjects)
	}
	if len(stats.RecentAssets) > 0 {
		fmt.Fprintln(w, "Recent assets")
		renderAssets(w, stats.RecentAssets)
	}
}
