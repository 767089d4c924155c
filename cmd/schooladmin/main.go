package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	logLevel := "info"
	clientFlags := NewClientFlags()

	rootCmd := &cobra.Command{
		Use:   "schooladmin",
		Short: "Command line client for the school platform admin API",
		Long: `schooladmin talks to the platform admin API the way the operator dashboard
does: a cached, deduplicated client with a persisted session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.Debug("debug logging enabled")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"Log level (trace,debug,info,warn,error) (default info)")
	clientFlags.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		NewLoginCommand(clientFlags),
		NewLogoutCommand(clientFlags),
		NewDashboardCommand(clientFlags),
		NewAnalyticsCommand(clientFlags),
		NewHealthCommand(clientFlags),
		NewSchoolsCommand(clientFlags),
		NewTicketsCommand(clientFlags),
		NewWatchCommand(clientFlags),
		NewVersionCommand(),
	)
	return rootCmd
}

func main() {
	// Add some millisecond precision to log timestamps, useful for debugging performance.
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	formatter.DisableColors = false
	log.SetFormatter(formatter)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		log.WithError(err).Fatal("could not execute root command")
	}
}
