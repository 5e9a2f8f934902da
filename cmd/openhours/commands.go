package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/openhours/internal/observability"
	"github.com/hrygo/openhours/internal/profile"
	"github.com/hrygo/openhours/server/service/openhours"
)

func (c *cli) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Tell whether the schedule is open at --at",
		Args:  cobra.NoArgs,
		RunE: c.query(func(cmd *cobra.Command, _ []string, s *openhours.Schedule, at time.Time) error {
			out := cmd.OutOrStdout()
			if iv, ok := s.OpenRangeAt(at); ok {
				fmt.Fprintf(out, "open %s, closes %s\n", iv.Clock(), iv.End.Format(displayLayout))
				return nil
			}
			if next, ok := s.NextOpen(at); ok {
				fmt.Fprintf(out, "closed, opens %s\n", next.Format(displayLayout))
				return nil
			}
			fmt.Fprintln(out, "closed")
			return nil
		}),
	}
}

func (c *cli) newDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [weekday|YYYY-MM-DD]",
		Short: "Print the opening ranges of a weekday or a date (default the day of --at)",
		Args:  cobra.MaximumNArgs(1),
		RunE: c.query(func(cmd *cobra.Command, args []string, s *openhours.Schedule, at time.Time) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			label, ranges, err := dayRanges(s, arg, at)
			if err != nil {
				return err
			}
			if len(ranges) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: closed\n", label)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, strings.Join(ranges, ", "))
			return nil
		}),
	}
}

// dayRanges resolves arg as a weekday name or a date. An empty arg means the day of at.
func dayRanges(s *openhours.Schedule, arg string, at time.Time) (string, []string, error) {
	if arg == "" {
		ranges, _ := s.ForDate(at)
		return at.Format("Monday 2006-01-02"), ranges, nil
	}
	if day, err := openhours.ParseWeekday(arg); err == nil {
		ranges, _ := s.ForDay(day)
		return day.String(), ranges, nil
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(arg), s.Location())
	if err != nil {
		return "", nil, errors.Errorf("%q is neither a weekday nor a YYYY-MM-DD date", arg)
	}
	ranges, _ := s.ForDate(date)
	return date.Format("Monday 2006-01-02"), ranges, nil
}

func (c *cli) newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next opening and closing after --at",
		Args:  cobra.NoArgs,
		RunE: c.query(func(cmd *cobra.Command, _ []string, s *openhours.Schedule, at time.Time) error {
			open, openOK := s.NextOpen(at)
			closing, closeOK := s.NextClose(at)
			printEdge(cmd.OutOrStdout(), "open", open, openOK)
			printEdge(cmd.OutOrStdout(), "close", closing, closeOK)
			return nil
		}),
	}
}

func (c *cli) newPreviousCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "previous",
		Short: "Print the last opening and closing before --at",
		Args:  cobra.NoArgs,
		RunE: c.query(func(cmd *cobra.Command, _ []string, s *openhours.Schedule, at time.Time) error {
			open, openOK := s.PreviousOpen(at)
			closing, closeOK := s.PreviousClose(at)
			printEdge(cmd.OutOrStdout(), "open", open, openOK)
			printEdge(cmd.OutOrStdout(), "close", closing, closeOK)
			return nil
		}),
	}
}

func printEdge(w io.Writer, name string, t time.Time, ok bool) {
	if !ok {
		fmt.Fprintf(w, "%-6s never\n", name)
		return
	}
	fmt.Fprintf(w, "%-6s %s\n", name, t.Format(displayLayout))
}

func (c *cli) newDurationCmd() *cobra.Command {
	var from, to, unit string
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Print the open and closed time between --from and --to",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&from, "from", "", "start instant (default --at)")
	cmd.Flags().StringVar(&to, "to", "", "end instant")
	cmd.Flags().StringVar(&unit, "unit", string(openhours.Hours), "hours, minutes, seconds or milliseconds")
	_ = cmd.MarkFlagRequired("to")

	cmd.RunE = c.query(func(cmd *cobra.Command, _ []string, s *openhours.Schedule, at time.Time) error {
		u, err := openhours.ParseUnit(unit)
		if err != nil {
			return err
		}
		start := at
		if from != "" {
			if start, err = parseInstant(from, s.Location()); err != nil {
				return err
			}
		}
		end, err := parseInstant(to, s.Location())
		if err != nil {
			return err
		}

		open, err := s.DurationOpenIn(start, end, u)
		if err != nil {
			return err
		}
		closed, err := s.DurationClosedIn(start, end, u)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "open   %s %s\n", strconv.FormatFloat(open, 'f', -1, 64), u)
		fmt.Fprintf(out, "closed %s %s\n", strconv.FormatFloat(closed, 'f', -1, 64), u)
		return nil
	})
	return cmd
}

func (c *cli) newDumpCmd() *cobra.Command {
	var asJSON, structured bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the normalized schedule",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schedule as JSON")
	cmd.Flags().BoolVar(&structured, "structured", false, "print every weekday with its reference-week intervals as JSON")

	cmd.RunE = c.query(func(cmd *cobra.Command, _ []string, s *openhours.Schedule, _ time.Time) error {
		out := cmd.OutOrStdout()
		switch {
		case structured:
			return writeJSON(out, s.StructuredData())
		case asJSON:
			return writeJSON(out, s)
		}

		fmt.Fprintf(out, "timezone: %s\n", s.Timezone())
		def := s.Definition()
		for _, day := range openhours.Weekdays {
			ranges := def[day]
			if len(ranges) == 0 {
				fmt.Fprintf(out, "%-10s closed\n", day+":")
				continue
			}
			fmt.Fprintf(out, "%-10s %s\n", day+":", strings.Join(ranges, ", "))
		}
		return nil
	})
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode schedule")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (c *cli) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check hours files strictly, reporting every malformed entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := c.p.Timezone
			q := observability.NewQueryContext(c.logger, cmd.Name(), override)
			results := make([]error, len(args))

			var g errgroup.Group
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					results[i] = c.validateFile(path, override)
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			out := cmd.OutOrStdout()
			for i, path := range args {
				if results[i] != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", path, results[i])
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", path)
			}
			var err error
			if failed > 0 {
				err = errors.Errorf("%d of %d hours files are invalid", failed, len(args))
				q.Error("validation failed", err)
			} else {
				q.Done(slog.Int("files", len(args)))
			}
			c.metrics.Observe(q, err)
			return err
		},
	}
}

func (c *cli) validateFile(path, override string) error {
	hours, err := profile.LoadHours(path)
	if err != nil {
		return err
	}
	tz := resolveTimezone(override, hours)
	loc, err := openhours.LoadLocation(tz)
	if err != nil {
		return err
	}
	_, err = c.buildSchedule(hours, tz, c.now().In(loc), true)
	return err
}
