package audit

import (
	"fmt"
	"io"
)

// Issue categories, in the order they are usually raised.
const (
	CategoryCard         = "Issue with a card"
	CategorySlack        = "Issue with a Slack account"
	CategoryGoogleGroups = "Issue with google groups"
)

// Report is the categorized result of one audit run. Categories keep the order in which
// their first issue was added.
type Report struct {
	order  []string
	issues map[string][]string
}

func NewReport() *Report {
	return &Report{issues: make(map[string][]string)}
}

func (r *Report) Add(category, message string) {
	if _, ok := r.issues[category]; !ok {
		r.order = append(r.order, category)
	}
	r.issues[category] = append(r.issues[category], message)
}

func (r *Report) addf(category, format string, args ...any) {
	r.Add(category, fmt.Sprintf(format, args...))
}

// Count is the total number of issues across categories.
func (r *Report) Count() int {
	n := 0
	for _, msgs := range r.issues {
		n += len(msgs)
	}
	return n
}

func (r *Report) Categories() []string {
	return append([]string(nil), r.order...)
}

func (r *Report) Messages(category string) []string {
	return append([]string(nil), r.issues[category]...)
}

// WriteText prints the report in the operator-facing format.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "There are %d total issues.\n\n", r.Count()); err != nil {
		return err
	}
	for _, cat := range r.order {
		msgs := r.issues[cat]
		if _, err := fmt.Fprintf(w, "%s (%d)\n", cat, len(msgs)); err != nil {
			return err
		}
		for _, m := range msgs {
			if _, err := fmt.Fprintf(w, ">>> %s\n", m); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
