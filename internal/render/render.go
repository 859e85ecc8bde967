// Package render turns a loaded ledger snapshot into markdown and prints it
// to the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"wallet/internal/core"
)

// summaryView is what the summary template reads.
type summaryView struct {
	UserID       string
	Balance      string
	Income       string
	Expense      string
	Lending      string
	Borrowing    string
	Transactions []transactionRow
	Stale        string
	ShowReport   bool
	ShowList     bool
}

type transactionRow struct {
	ID       string
	Date     string
	Title    string
	Category string
	Type     string
	Party    string
	Amount   string
}

const summaryMarkdownTemplate = `# Wallet of {{ .UserID }}
{{- if .Stale }}

> {{ .Stale }}
{{- end }}
{{- if .ShowReport }}

Balance: **{{ .Balance }}**

| Income | Expense | Lending | Borrowing |
|---:|---:|---:|---:|
| {{ .Income }} | {{ .Expense }} | {{ .Lending }} | {{ .Borrowing }} |
{{- end }}
{{- if .ShowList }}
{{- if .Transactions }}

## Transactions

| ID | Date | Title | Category | Type | With | Amount |
|:---|:---|:---|:---|:---|:---|---:|
{{- range .Transactions }}
| {{ .ID }} | {{ .Date }} | {{ .Title }} | {{ .Category }} | {{ .Type }} | {{ .Party }} | {{ .Amount }} |
{{- end }}
{{- else }}

_No transactions yet._
{{- end }}
{{- end }}
`

var summaryTemplate = template.Must(template.New("summary").Parse(summaryMarkdownTemplate))

// SummaryInput is one snapshot's data as the summary shows it.
type SummaryInput struct {
	UserID       string
	Currency     string
	Transactions []core.Transaction
	Report       core.Report
	// Err is the last load error; the data shown is then the previous
	// snapshot.
	Err error
}

// SummaryMarkdown renders the balance card followed by the transaction list,
// newest first.
func SummaryMarkdown(in SummaryInput) string {
	return renderSummary(in, true, true)
}

// ReportMarkdown renders only the balance card.
func ReportMarkdown(in SummaryInput) string {
	return renderSummary(in, true, false)
}

// TransactionsMarkdown renders only the transaction list.
func TransactionsMarkdown(in SummaryInput) string {
	return renderSummary(in, false, true)
}

func renderSummary(in SummaryInput, showReport, showList bool) string {
	view := summaryView{
		UserID:     escape(in.UserID),
		Balance:    core.FormatAmount(in.Report.Balance, in.Currency),
		Income:     core.FormatAmount(in.Report.Income, in.Currency),
		Expense:    core.FormatAmount(in.Report.Expense, in.Currency),
		Lending:    core.FormatAmount(in.Report.Lending, in.Currency),
		Borrowing:  core.FormatAmount(in.Report.Borrowing, in.Currency),
		ShowReport: showReport,
		ShowList:   showList,
	}
	if in.Err != nil {
		view.Stale = "Showing last loaded data: " + escape(in.Err.Error())
	}
	for _, tx := range core.SortNewestFirst(in.Transactions) {
		view.Transactions = append(view.Transactions, transactionRow{
			ID:       escape(tx.ID.String()),
			Date:     core.FormatDate(tx.CreatedAt.Time),
			Title:    escape(tx.Title),
			Category: escape(tx.Category),
			Type:     string(tx.Type),
			Party:    escape(tx.RelatedParty),
			Amount:   core.FormatSignedAmount(tx, in.Currency),
		})
	}

	var b strings.Builder
	if err := summaryTemplate.Execute(&b, view); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}

// CategoriesMarkdown lists the allowed categories per transaction type.
func CategoriesMarkdown() string {
	var b strings.Builder
	b.WriteString("# Categories\n\n| Type | Categories |\n|:---|:---|\n")
	for _, t := range core.Types() {
		fmt.Fprintf(&b, "| %s | %s |\n", t, strings.Join(t.Categories(), ", "))
	}
	return b.String()
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// Options controls terminal output.
type Options struct {
	// Style is a glamour standard style name ("dark", "light", "notty").
	// Empty picks one from the terminal.
	Style    string
	WordWrap int
}

// Print renders md for the terminal and writes it to w.
func Print(w io.Writer, md string, opts Options) error {
	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 100
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
