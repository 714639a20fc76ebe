package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/parse"
)

func newAddCommand(a *app) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "add AMOUNT",
		Short: "Record a new expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parse.Amount(args[0])
			if err != nil {
				return err
			}
			draft, err := flags.draft(amount)
			if err != nil {
				return err
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			e, err := svc.Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			a.println(a.render.Added(e))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var (
		filters filterFlags
		sortBy  string
		desc    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := filters.query()
			if err != nil {
				return err
			}
			field, err := parse.SortField(sortBy)
			if err != nil {
				return err
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			res, err := svc.List(cmd.Context(), q, expense.SortKey{Field: field, Desc: desc})
			if err != nil {
				return err
			}
			if len(res.Matched) == 0 {
				a.println(a.render.Warning("no expenses matched"))
				if len(q.Categories) > 0 {
					suggestions, err := svc.SuggestCategories(cmd.Context(), q.Categories)
					if err != nil {
						return err
					}
					if hint := a.render.Suggestions(suggestions); hint != "" {
						a.println(hint)
					}
				}
				return nil
			}
			a.println(a.render.Expenses(res.Matched, "Expenses"))
			a.println(a.render.Total("Total", res.Total))
			a.println(a.render.Entries(len(res.Matched), res.Count))
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort-by", "date", "sort by date, id or amount")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort in descending order")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete expenses matching any of the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := filters.query()
			if err != nil {
				return err
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			res, err := svc.Delete(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(res.Removed) == 0 {
				a.println(a.render.Warning("nothing was deleted"))
				return nil
			}
			a.println(a.render.Expenses(res.Removed, "Deleted"))
			a.println(a.render.Total("Total removed", res.Total))
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var (
		id     string
		amount string
		flags  draftFlags
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change fields of one expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expenseID, err := parse.ID(id)
			if err != nil {
				return err
			}
			edit, err := flags.edit(cmd, amount)
			if err != nil {
				return err
			}
			if edit == (expense.Edit{}) {
				a.println(a.render.Warning("no modifications given"))
				return nil
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			changes, err := svc.Edit(cmd.Context(), expenseID, edit)
			if err != nil {
				return err
			}
			a.println(a.render.Changes(expenseID, changes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&id, "id", "i", "", "id of the expense to edit")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// edit collects the flags the user passed with a non-blank value into an
// expense edit. Blank values count as not given.
func (d *draftFlags) edit(cmd *cobra.Command, amount string) (expense.Edit, error) {
	var edit expense.Edit
	given := func(name, value string) bool {
		return cmd.Flags().Changed(name) && strings.TrimSpace(value) != ""
	}
	if given("amount", amount) {
		v, err := parse.Amount(amount)
		if err != nil {
			return edit, err
		}
		edit.Amount = &v
	}
	if given("date", d.date) {
		v, err := parse.Date(d.date)
		if err != nil {
			return edit, err
		}
		edit.Date = &v
	}
	if given("category", d.category) {
		v, err := parse.Category(d.category)
		if err != nil {
			return edit, err
		}
		edit.Category = &v
	}
	if given("description", d.description) {
		v, err := parse.Description(d.description)
		if err != nil {
			return edit, err
		}
		edit.Description = &v
	}
	return edit, nil
}

func newSummaryCommand(a *app) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := filters.query()
			if err != nil {
				return err
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			totals, err := svc.Summary(cmd.Context(), q)
			if err != nil {
				return err
			}
			if totals.Count == 0 {
				a.println(a.render.Warning("no expenses matched"))
				return nil
			}
			a.println(a.render.Categories(totals))
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}

func newUndoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the expenses as they were before the last change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			n, err := svc.Undo(cmd.Context())
			if err != nil {
				return err
			}
			a.println(a.render.Success(fmt.Sprintf("Restored %d expenses", n)))
			return nil
		},
	}
}
