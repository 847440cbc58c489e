// Package components renders the dashboard's presentational widgets.
//
// Each component is split in two: a pure Build function turning props into a
// view model, and a Renderer method executing the matching embedded template.
// Components never fail on malformed data; missing values render as zero.
package components

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"estoque/internal/format"
)

// Template names defined in web/templates.
const (
	TemplateMonthlyExpensesCard = "monthly_expenses_card"
	TemplateStatisticsChart     = "statistics_chart"
	TemplateTransactionsList    = "transactions_list"
	TemplateTransactionDetail   = "transaction_detail"
	TemplateDashboardPage       = "dashboard_page"
	TemplateChatPage            = "chat_page"
	TemplateChatMessages        = "chat_messages"
)

var templateNames = []string{
	TemplateMonthlyExpensesCard,
	TemplateStatisticsChart,
	TemplateTransactionsList,
	TemplateTransactionDetail,
	TemplateDashboardPage,
	TemplateChatPage,
	TemplateChatMessages,
}

// Renderer owns the parsed template set.
type Renderer struct {
	tmpl *template.Template
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"currency":    format.Currency,
		"units":       format.Units,
		"monthAbbrev": format.MonthAbbrev,
	}
}

// NewRenderer parses templates/*.html from fsys and fails when a Template*
// name is not defined.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	t, err := template.New("").Funcs(Funcs()).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := &Renderer{tmpl: t}
	for _, name := range templateNames {
		if !r.Has(name) {
			return nil, fmt.Errorf("parse templates: %q is not defined", name)
		}
	}
	return r, nil
}

// Render executes the named template into w. Output is buffered so a failing
// template never leaves a half-written partial behind.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a template with the given name is defined.
func (r *Renderer) Has(name string) bool {
	return r.tmpl.Lookup(name) != nil
}
