package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/config"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Resolve and print the run plan without booking anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			plan, err := cfg.BuildPlan(time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "venue:      %s\n", cfg.BookingURL)
			fmt.Fprintf(os.Stdout, "seats:      %d\n", plan.Seats)
			fmt.Fprintf(os.Stdout, "dates:      %s\n", joinDates(plan.Dates))
			fmt.Fprintf(os.Stdout, "preferred:  %s\n", plan.PreferredTimes)
			if len(plan.AllowedTimes) > 0 {
				fmt.Fprintf(os.Stdout, "allowed:    %s\n", plan.AllowedTimes)
			} else {
				fmt.Fprintln(os.Stdout, "allowed:    (no fallback tier)")
			}
			if plan.StartNotBefore != nil {
				fmt.Fprintf(os.Stdout, "start at:   %s\n", plan.StartNotBefore.Format("3:04:05pm Jan 2"))
			}
			if plan.StopAfter != nil {
				fmt.Fprintf(os.Stdout, "stop at:    %s\n", plan.StopAfter.Format("3:04:05pm Jan 2"))
			}
			if plan.OnFailure.Action == booking.FailureRetry {
				fmt.Fprintf(os.Stdout, "on failure: retry every ~%s\n", plan.OnFailure.BaseDelay)
			} else {
				fmt.Fprintln(os.Stdout, "on failure: stop")
			}
			if plan.RequiresHuman {
				fmt.Fprintln(os.Stdout, "mode:       hand off to a human when a table is found")
			} else {
				fmt.Fprintln(os.Stdout, "mode:       book automatically")
			}
			return nil
		},
	}
}

func joinDates(dates []booking.CalendarDate) string {
	out := ""
	for i, d := range dates {
		if i > 0 {
			out += ", "
		}
		out += d.String()
	}
	return out
}
