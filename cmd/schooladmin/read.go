package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/guarzo/schooladmin/common/model"
)

func NewDashboardCommand(clientFlags *ClientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the platform summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			dash, err := p.service.GetDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dash)
		},
	}
}

func NewAnalyticsCommand(clientFlags *ClientFlags) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show revenue and growth analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			analytics, err := p.service.GetAnalytics(cmd.Context(), period)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analytics)
		},
	}
	cmd.Flags().StringVar(&period, "period", "30d", "Analytics period, e.g. 7d, 30d, 90d, 1y")
	return cmd
}

func NewHealthCommand(clientFlags *ClientFlags) *cobra.Command {
	var minVersion string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show API health, optionally checking the API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			health, err := p.service.GetSystemHealth(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), health); err != nil {
				return err
			}
			if minVersion == "" {
				return nil
			}

			ok, err := p.service.CheckCompatibility(cmd.Context(), minVersion)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("API version %s is older than required %s", health.Version, minVersion)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API version %s satisfies >= %s\n", health.Version, minVersion)
			return nil
		},
	}
	cmd.Flags().StringVar(&minVersion, "min-version", "", "Fail unless the API reports at least this version")
	return cmd
}

func NewSchoolsCommand(clientFlags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schools",
		Short: "List and manage schools",
	}

	var filter model.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List schools",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			schools, err := p.service.GetSchools(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), schools)
		},
	}
	bindListFilter(list, &filter)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one school",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			school, err := p.service.GetSchool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), school)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Activate or suspend a school",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			school, err := p.service.ToggleSchoolStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), school)
		},
	}

	cmd.AddCommand(list, get, toggle)
	return cmd
}

func NewTicketsCommand(clientFlags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Support tickets",
	}

	var filter model.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List support tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			tickets, err := p.service.GetTickets(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tickets)
		},
	}
	bindListFilter(list, &filter)

	cmd.AddCommand(list)
	return cmd
}

func bindListFilter(cmd *cobra.Command, filter *model.ListFilter) {
	cmd.Flags().StringVar(&filter.Search, "search", "", "Free text search")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Only show items with this status")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")
}
