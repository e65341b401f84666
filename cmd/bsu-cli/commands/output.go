package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"studentbsu/internal/scrapers/bsu"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func gradeText(grade string) string {
	if grade == "" {
		return "-"
	}
	return grade
}

func renderTerms(w io.Writer, terms bsu.TermData) {
	t := newTable(w)
	t.SetTitle("Grades")
	t.AppendHeader(table.Row{"Term", "Subject", "Credit test", "Tries", "Exam", "Tries"})
	for i, term := range terms {
		for _, subject := range term {
			t.AppendRow(table.Row{
				i + 1,
				subject.Subject,
				gradeText(subject.CreditTest),
				subject.CreditTestTries,
				gradeText(subject.Exam),
				subject.ExamTries,
			})
		}
		if i < len(terms)-1 {
			t.AppendSeparator()
		}
	}
	t.Render()
}

func renderGeneral(w io.Writer, general bsu.GeneralData) {
	t := newTable(w)
	t.SetTitle("Profile")
	t.AppendRows([]table.Row{
		{"Name", general.FullName},
		{"Faculty", general.Faculty},
		{"Course", general.Course},
		{"Group", general.Group},
		{"Education form", general.EducationForm},
		{"Specialty", general.Specialty},
		{"Average score", fmt.Sprintf("%.2f", general.AverageScore)},
	})
	t.Render()
}

func renderDebt(w io.Writer, debt bsu.DebtData) {
	expelled := "no"
	if debt.Expelled {
		expelled = "yes"
	}

	t := newTable(w)
	t.SetTitle("Payments")
	t.AppendRows([]table.Row{
		{"Debt", fmt.Sprintf("%.2f", debt.Debt)},
		{"Fine", fmt.Sprintf("%.2f", debt.Fine)},
		{"Expelled", expelled},
	})
	t.Render()
}

func renderCredentials(w io.Writer, credentials bsu.CredentialsData) {
	t := newTable(w)
	t.SetTitle("Credentials")
	t.AppendRows([]table.Row{
		{"Surname", credentials.Surname},
		{"Contract", credentials.ContractNum},
		{"Student id", credentials.Id},
	})
	t.Render()
}

// Report is everything the portal knows about a student, printed by `all`.
type Report struct {
	Terms       bsu.TermData        `json:"term_data"`
	General     bsu.GeneralData     `json:"general_data"`
	Debt        bsu.DebtData        `json:"debt_data"`
	Credentials bsu.CredentialsData `json:"credentials_data"`
}

func renderReport(w io.Writer, report Report) {
	renderGeneral(w, report.General)
	renderCredentials(w, report.Credentials)
	renderDebt(w, report.Debt)
	renderTerms(w, report.Terms)
}
