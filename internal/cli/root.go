// Package cli implements the wallet command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NgigiN/walletwatcher/internal/config"
	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/log"
	"github.com/NgigiN/walletwatcher/internal/render"
	"github.com/NgigiN/walletwatcher/internal/storage"
	"github.com/NgigiN/walletwatcher/internal/wallet"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfg    config.Config
	logger *log.Logger
	out    io.Writer

	store   storage.Store
	service *wallet.Service
	render  *render.Renderer
}

// open builds the wallet service on first use.
func (a *app) open() (*wallet.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	store, err := storage.Open(a.cfg.Data.Backend, a.cfg.DataPath())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("store opened",
		log.FieldBackend, a.cfg.Data.Backend,
		log.FieldPath, a.cfg.DataPath(),
	)
	history := storage.NewHistory(a.cfg.HistoryDir(), a.cfg.History.Limit)
	a.store = store
	a.service = wallet.NewService(store, history, a.logger, wallet.Defaults{
		Category:    a.cfg.Defaults.Category,
		Description: a.cfg.Defaults.Description,
	})
	return a.service, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", log.FieldError, err)
	}
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wallet",
		Short:         "Track personal expenses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newDeleteCommand(a),
		newEditCommand(a),
		newSummaryCommand(a),
		newUndoCommand(a),
		newBotCommand(a),
	)
	return root
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, cfg config.Config, logger *log.Logger, args []string, stdout, stderr io.Writer) int {
	if logger == nil {
		logger = log.Nop()
	}
	a := &app{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentCLI),
		out:    stdout,
		render: render.New(stdout, cfg.UI.Currency, cfg.UI.Color),
	}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.logger.Debug("command failed", log.FieldError, err)
		fmt.Fprintln(stderr, render.New(stderr, cfg.UI.Currency, cfg.UI.Color).Error(message(err)))
		return 1
	}
	return 0
}

// message turns an error into the line shown to the user.
func message(err error) string {
	switch {
	case errors.Is(err, wallet.ErrNoFilters):
		return "refusing to delete without a filter (use --id, --date, --category, --description or a range flag)"
	case errors.Is(err, storage.ErrNoHistory):
		return "nothing to undo"
	case errors.Is(err, expense.ErrInvalidAmount):
		return fmt.Sprintf("%v (amounts must be at least %s)", err, expense.MinAmount.StringFixed(2))
	}
	return err.Error()
}
