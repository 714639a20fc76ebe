package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NgigiN/walletwatcher/internal/discord"
)

func newBotCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Serve the wallet in a Discord channel until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateDiscord(); err != nil {
				return err
			}
			svc, err := a.open()
			if err != nil {
				return err
			}
			bot, err := discord.NewBot(a.cfg, svc, a.logger)
			if err != nil {
				return err
			}
			if err := bot.Start(); err != nil {
				return err
			}

			a.println("Bot is running...")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			bot.Stop()
			a.println("Bot stopped.")
			return nil
		},
	}
}
