package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/openhours/internal/observability"
	"github.com/hrygo/openhours/internal/profile"
	"github.com/hrygo/openhours/server/service/openhours"
)

const version = "0.3.0"

// instantLayouts are tried in order when parsing --at, --from and --to.
var instantLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

const displayLayout = "Mon 2006-01-02 15:04 MST"

type cli struct {
	v       *viper.Viper
	p       *profile.Profile
	now     func() time.Time
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newRootCmd(now func() time.Time) *cobra.Command {
	c := &cli{
		v:       viper.New(),
		now:     now,
		logger:  slog.Default(),
		metrics: observability.NewMetrics(),
	}

	rootCmd := &cobra.Command{
		Use:          "openhours",
		Short:        "Answer questions about a weekly opening hours schedule.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.p = c.newProfile()
			c.logger = newLogger(cmd.ErrOrStderr(), c.p)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			c.logMetrics()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "prod", `mode of the command, can be "prod" or "dev"`)
	flags.String("hours", "", "path of the hours file (yaml, json or toml)")
	flags.String("timezone", "", "IANA timezone, overrides the timezone of the hours file")
	flags.String("at", "", `instant to query, RFC3339 or "2006-01-02 15:04" (default now)`)
	flags.Bool("strict", false, "reject malformed ranges instead of dropping them")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", `log format, "text" or "json"`)

	for _, name := range []string{"mode", "hours", "timezone", "at", "strict", "log-level", "log-format"} {
		if err := c.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	c.v.SetEnvPrefix("openhours")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	rootCmd.AddCommand(
		c.newStatusCmd(),
		c.newDayCmd(),
		c.newNextCmd(),
		c.newPreviousCmd(),
		c.newDurationCmd(),
		c.newDumpCmd(),
		c.newValidateCmd(),
	)
	return rootCmd
}

// newProfile reads flags and OPENHOURS_* variables. It is validated only by the
// commands that need an hours file.
func (c *cli) newProfile() *profile.Profile {
	p := &profile.Profile{
		Mode:      c.v.GetString("mode"),
		Timezone:  c.v.GetString("timezone"),
		HoursFile: c.v.GetString("hours"),
		Strict:    c.v.GetBool("strict"),
		LogLevel:  c.v.GetString("log-level"),
		LogFormat: c.v.GetString("log-format"),
		Version:   version,
	}
	p.FromEnv()
	return p
}

// newLogger builds the command logger. Dev mode logs everything, with source locations.
func newLogger(w io.Writer, p *profile.Profile) *slog.Logger {
	level := p.LogLevel
	if p.IsDev() {
		level = "debug"
	}
	return observability.NewLogger(w, level, p.LogFormat, p.IsDev())
}

// resolveTimezone returns the timezone of the profile, or the one declared in the file.
func resolveTimezone(override string, hours *profile.HoursFile) string {
	if override != "" {
		return override
	}
	return hours.Timezone
}

func (c *cli) buildSchedule(hours *profile.HoursFile, tz string, at time.Time, strict bool) (*openhours.Schedule, error) {
	opts := []openhours.Option{
		openhours.WithClock(func() time.Time { return at }),
		openhours.WithLogger(c.logger),
	}
	if strict {
		opts = append(opts, openhours.WithStrictRanges())
	}
	return openhours.New(openhours.DefinitionFromMap(hours.Hours), tz, opts...)
}

// load reads the configured hours file and resolves --at in its timezone.
func (c *cli) load() (*openhours.Schedule, time.Time, error) {
	p := c.p
	if err := p.Validate(); err != nil {
		return nil, time.Time{}, err
	}
	hours, err := profile.LoadHours(p.HoursFile)
	if err != nil {
		return nil, time.Time{}, err
	}

	tz := resolveTimezone(p.Timezone, hours)
	loc, err := openhours.LoadLocation(tz)
	if err != nil {
		return nil, time.Time{}, err
	}

	at := c.now().In(loc)
	if raw := c.v.GetString("at"); raw != "" {
		if at, err = parseInstant(raw, loc); err != nil {
			return nil, time.Time{}, err
		}
	}

	s, err := c.buildSchedule(hours, tz, at, p.Strict)
	if err != nil {
		return nil, time.Time{}, err
	}
	return s, at, nil
}

type queryFunc func(cmd *cobra.Command, args []string, s *openhours.Schedule, at time.Time) error

// query runs fn against the configured schedule inside a logged, measured query.
func (c *cli) query(fn queryFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, at, err := c.load()
		if err != nil {
			return err
		}

		q := observability.NewQueryContext(c.logger, cmd.Name(), s.Timezone())
		err = fn(cmd, args, s, at)
		if err != nil {
			var attrs []slog.Attr
			if code := openhours.CodeOf(err); code != "" {
				attrs = append(attrs, slog.String(observability.LogFieldErrorCode, string(code)))
			}
			q.Error("query failed", err, attrs...)
		} else {
			q.Done(slog.Time("at", at))
		}
		c.metrics.Observe(q, err)
		return err
	}
}

func (c *cli) logMetrics() {
	snap := c.metrics.Snapshot()
	if snap.QueryTotal == 0 {
		return
	}
	c.logger.Debug("query metrics",
		slog.Int64("total", snap.QueryTotal),
		slog.Int64("failed", snap.QueryFailed),
		slog.Float64("success_rate", snap.SuccessRate()),
	)
	for _, name := range snap.CommandNames() {
		cs := snap.Commands[name]
		c.logger.Debug("command metrics",
			slog.String(observability.LogFieldCommand, name),
			slog.Int64("count", cs.Count),
			slog.Int64("errors", cs.ErrorCount),
			slog.Duration("average", cs.AverageDuration),
		)
	}
}

// parseInstant accepts RFC3339 or a wall-clock layout interpreted in loc.
func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("cannot parse instant %q, want RFC3339 or \"2006-01-02 15:04\"", raw)
}

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}
