package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/testnames/internal/rules"
)

// TextOptions configures WriteText.
type TextOptions struct {
	// Verbose also lists classes without complaints.
	Verbose bool
}

// WriteText writes the report as human-readable styled text to the
// writer. Output uses lipgloss for color and formatting when the
// output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, rep *JSONReport, opts TextOptions) error {
	s := DefaultStyles()
	if rep == nil {
		rep = New(nil, "", 0)
	}

	first := true
	for _, c := range rep.Classes {
		if len(c.Complaints) == 0 && !opts.Verbose {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		writeClass(w, c, s)
	}

	status := s.Pass.Render("PASS")
	if rep.Summary.Complaints > 0 {
		status = s.Fail.Render("FAIL")
	}
	fmt.Fprintf(w, "\n%s %s\n", status,
		s.Header.Render(fmt.Sprintf(
			"%d class(es) checked, %d test case(s), %d complaint(s)",
			rep.Summary.Classes, rep.Summary.Cases, rep.Summary.Complaints)))
	return nil
}

func writeClass(w io.Writer, c ClassReport, s Styles) {
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", c.Name)))
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    %s", c.Path)))

	if len(c.Complaints) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No complaints."))
		return
	}
	fmt.Fprintln(w)

	type complaintRow struct {
		rule, subject, message string
		depth                  int
	}
	var rows []complaintRow
	var add func(cs []ComplaintReport, depth int)
	add = func(cs []ComplaintReport, depth int) {
		for _, cr := range cs {
			rule := cr.Rule
			if depth > 0 {
				rule = strings.Repeat("  ", depth-1) + "└ " + rule
			}
			rows = append(rows, complaintRow{rule, subjectCase(cr.Subject, c.Name), cr.Message, depth})
			add(cr.Children, depth+1)
		}
	}
	add(c.Complaints, 0)

	// Budget: the table is 76 cols. Borders take 4 and cell padding 3,
	// leaving 69. RULE keeps rule IDs whole; SUBJECT and MESSAGE share
	// the rest.
	const (
		content = 69
		maxRule = 40
	)
	ruleWidth := len("RULE")
	for _, r := range rows {
		ruleWidth = max(ruleWidth, utf8.RuneCountInString(r.rule))
	}
	ruleWidth = min(ruleWidth, maxRule)
	maxSubject := (content - ruleWidth) * 2 / 5
	maxMessage := content - ruleWidth - maxSubject

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			Truncate(r.rule, ruleWidth),
			Truncate(r.subject, maxSubject),
			Truncate(r.message, maxMessage),
		})
	}

	t := table.New().
		Width(76). // Leave 4 chars for left indent.
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 0 && row >= 0 && row < len(rows) {
				return s.DepthStyle(rows[row].depth)
			}
			return s.TableCell
		}).
		Headers("RULE", "SUBJECT", "MESSAGE").
		Rows(cells...)

	fmt.Fprintln(w, t)
}

// subjectCase drops the class prefix from a case subject; class
// subjects render as "(class)".
func subjectCase(subject, class string) string {
	if subject == class {
		return "(class)"
	}
	return strings.TrimPrefix(subject, class+".")
}

// Truncate shortens s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// WriteRules writes the rule catalogue as a table.
func WriteRules(w io.Writer, defs []rules.Definition) error {
	s := DefaultStyles()

	const maxDesc = 30
	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		enabled := "off"
		if d.DefaultEnabled {
			enabled = "on"
		}
		rows = append(rows, []string{d.ID, string(d.Scope), enabled, Truncate(d.Description, maxDesc)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 2 && row >= 0 && row < len(rows) && rows[row][2] == "on" {
				return s.Pass
			}
			return s.TableCell
		}).
		Headers("RULE", "SCOPE", "DEFAULT", "DESCRIPTION").
		Rows(rows...)

	_, err := fmt.Fprintln(w, t)
	return err
}
