// Package render formats expenses, totals and edit results for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

const (
	colorAccent  lipgloss.Color = "#f5c2e7"
	colorBorder  lipgloss.Color = "#6c7086"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorWarning lipgloss.Color = "#f9e2af"
	colorError   lipgloss.Color = "#f38ba8"
	colorMuted   lipgloss.Color = "#a6adc8"
)

const arrow = "➜"

type Renderer struct {
	currency string

	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	number  lipgloss.Style
	border  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// New returns a renderer for output written to w. With color off every style
// is plain text.
func New(w io.Writer, currency string, color bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	plain := lr.NewStyle()
	r := &Renderer{
		currency: currency,
		title:    plain,
		header:   plain.Padding(0, 1),
		cell:     plain.Padding(0, 1),
		number:   plain.Padding(0, 1).Align(lipgloss.Right),
		border:   plain,
		success:  plain,
		warning:  plain,
		failure:  plain,
		muted:    plain,
	}
	if !color {
		return r
	}
	r.title = plain.Foreground(colorAccent).Bold(true)
	r.header = r.header.Foreground(colorAccent).Bold(true)
	r.border = plain.Foreground(colorBorder)
	r.success = plain.Foreground(colorSuccess)
	r.warning = plain.Foreground(colorWarning)
	r.failure = plain.Foreground(colorError).Bold(true)
	r.muted = plain.Foreground(colorMuted)
	return r
}

// Money formats an amount with the configured currency symbol.
func (r *Renderer) Money(amount decimal.Decimal) string {
	return r.currency + amount.StringFixed(2)
}

// Expenses renders list as a table under title.
func (r *Renderer) Expenses(list []expense.Expense, title string) string {
	rows := make([][]string, len(list))
	for i, e := range list {
		rows[i] = []string{
			strconv.Itoa(e.ID),
			e.Date.String(),
			e.Category,
			e.Description,
			r.Money(e.Amount),
		}
	}
	t := r.table("ID", "Date", "Category", "Description", "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.header
			case col == 0 || col == 4:
				return r.number
			}
			return r.cell
		})
	return r.title.Render(title) + "\n" + t.Render()
}

// Categories renders per-category totals with their share of the overall
// total, followed by the overall line.
func (r *Renderer) Categories(totals expense.Totals) string {
	var rows [][]string
	hundred := decimal.NewFromInt(100)
	for _, c := range totals.Categories() {
		share := "-"
		if !totals.Overall.IsZero() {
			share = c.Amount.Div(totals.Overall).Mul(hundred).StringFixed(1) + "%"
		}
		rows = append(rows, []string{c.Category, r.Money(c.Amount), share})
	}
	t := r.table("Category", "Amount", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.header
			case col > 0:
				return r.number
			}
			return r.cell
		})
	return r.title.Render("Summary") + "\n" + t.Render() + "\n" +
		r.Total("Total", totals.Overall) + "\n" +
		r.muted.Render(fmt.Sprintf("Entries: %d", totals.Count))
}

// Changes renders the fields an edit replaced, one `old ➜ new` line each.
func (r *Renderer) Changes(id int, changes expense.Changes) string {
	var b strings.Builder
	b.WriteString(r.success.Render(fmt.Sprintf("Expense #%d updated", id)))
	for _, f := range changes.Fields() {
		c := changes[f]
		b.WriteString(fmt.Sprintf("\n  %s: %s %s %s", f, r.value(c.Old), arrow, r.value(c.New)))
	}
	return b.String()
}

func (r *Renderer) Added(e expense.Expense) string {
	return r.success.Render(fmt.Sprintf("Added expense #%d", e.ID)) +
		fmt.Sprintf(": %s on %s, %s (%s)", r.Money(e.Amount), e.Date, e.Category, e.Description)
}

func (r *Renderer) Total(label string, amount decimal.Decimal) string {
	return r.title.Render(label+":") + " " + r.Money(amount)
}

// Entries renders the matched/overall count line under a listing.
func (r *Renderer) Entries(matched, overall int) string {
	return r.muted.Render(fmt.Sprintf("Entries: %d/%d", matched, overall))
}

func (r *Renderer) Success(msg string) string {
	return r.success.Render(msg)
}

func (r *Renderer) Warning(msg string) string {
	return r.warning.Render("Warning: " + msg)
}

func (r *Renderer) Error(msg string) string {
	return r.failure.Render("Error: " + msg)
}

// Suggestions renders a "did you mean" hint, or nothing when there is no
// candidate.
func (r *Renderer) Suggestions(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return r.muted.Render("Did you mean: " + strings.Join(candidates, ", ") + "?")
}

func (r *Renderer) value(v expense.Value) string {
	if v.Kind() == expense.KindAmount {
		return r.Money(v.Amount())
	}
	return v.String()
}

func (r *Renderer) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.border).
		Headers(headers...)
}
