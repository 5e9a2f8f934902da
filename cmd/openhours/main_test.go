package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/openhours/server/service/openhours"
)

const officeHours = `
timezone: UTC
hours:
  monday: ["09:00-12:00", "13:00-17:00"]
  tuesday: ["09:00-17:00"]
  wednesday: ["09:00-17:00"]
  thursday: ["09:00-17:00"]
  friday: ["09:00-17:00"]
`

// wednesdayMorning is Wed 2024-05-15 10:00 UTC.
func wednesdayMorning() time.Time {
	return time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENHOURS_MODE",
		"OPENHOURS_HOURS",
		"OPENHOURS_TIMEZONE",
		"OPENHOURS_AT",
		"OPENHOURS_STRICT",
		"OPENHOURS_LOG_LEVEL",
		"OPENHOURS_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func writeHours(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd(wednesdayMorning)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestStatusCommand(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "open now",
			args: []string{"--hours", hours, "status"},
			want: "open 09:00-17:00, closes Wed 2024-05-15 17:00 UTC\n",
		},
		{
			name: "closed on saturday",
			args: []string{"--hours", hours, "--at", "2024-05-18 10:00", "status"},
			want: "closed, opens Mon 2024-05-20 09:00 UTC\n",
		},
		{
			name: "lunch break",
			args: []string{"--hours", hours, "--at", "2024-05-13T12:30:00Z", "status"},
			want: "closed, opens Mon 2024-05-13 13:00 UTC\n",
		},
		{
			name: "timezone override",
			args: []string{"--hours", hours, "--timezone", "Asia/Tokyo", "status"},
			want: "closed, opens Thu 2024-05-16 09:00 JST\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStatusCommand_HoursFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENHOURS_HOURS", writeHours(t, "hours.yaml", officeHours))

	out, _, err := execute(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "open 09:00-17:00, closes Wed 2024-05-15 17:00 UTC\n", out)
}

func TestStatusCommand_NeverOpen(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", "timezone: UTC\nhours: {}\n")

	out, _, err := execute(t, "--hours", hours, "status")
	require.NoError(t, err)
	assert.Equal(t, "closed\n", out)
}

func TestDayCommand(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	tests := []struct {
		name string
		arg  []string
		want string
	}{
		{"day of --at", nil, "Wednesday 2024-05-15: 09:00-17:00\n"},
		{"weekday", []string{"Monday"}, "monday: 09:00-12:00, 13:00-17:00\n"},
		{"closed date", []string{"2024-05-19"}, "Sunday 2024-05-19: closed\n"},
		{"open date", []string{"2024-05-20"}, "Monday 2024-05-20: 09:00-12:00, 13:00-17:00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--hours", hours, "day"}, tt.arg...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, _, err := execute(t, "--hours", hours, "day", "blursday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a weekday nor a YYYY-MM-DD date")
}

func TestEdgeCommands(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	out, _, err := execute(t, "--hours", hours, "next")
	require.NoError(t, err)
	assert.Equal(t, "open   Thu 2024-05-16 09:00 UTC\nclose  Wed 2024-05-15 17:00 UTC\n", out)

	out, _, err = execute(t, "--hours", hours, "previous")
	require.NoError(t, err)
	assert.Equal(t, "open   Wed 2024-05-15 09:00 UTC\nclose  Tue 2024-05-14 17:00 UTC\n", out)

	empty := writeHours(t, "empty.yaml", "hours: {}\n")
	out, _, err = execute(t, "--hours", empty, "next")
	require.NoError(t, err)
	assert.Equal(t, "open   never\nclose  never\n", out)
}

func TestDurationCommand(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	out, _, err := execute(t, "--hours", hours, "duration",
		"--from", "2024-05-13T00:00:00Z", "--to", "2024-05-27T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "open   78 hours\nclosed 258 hours\n", out)

	out, _, err = execute(t, "--hours", hours, "duration", "--to", "2024-05-15 11:30", "--unit", "minutes")
	require.NoError(t, err)
	assert.Equal(t, "open   90 minutes\nclosed 0 minutes\n", out)

	_, _, err = execute(t, "--hours", hours, "duration", "--to", "2024-05-16", "--unit", "fortnights")
	require.Error(t, err)
	assert.True(t, openhours.IsCode(err, openhours.ErrCodeInvalidUnit))

	_, _, err = execute(t, "--hours", hours, "duration")
	assert.Error(t, err)
}

func TestDumpCommand(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	out, _, err := execute(t, "--hours", hours, "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "timezone: UTC\n")
	assert.Contains(t, out, "monday:    09:00-12:00, 13:00-17:00\n")
	assert.Contains(t, out, "wednesday: 09:00-17:00\n")
	assert.Contains(t, out, "saturday:  closed\n")

	out, _, err = execute(t, "--hours", hours, "dump", "--json")
	require.NoError(t, err)
	var doc struct {
		Timezone string              `json:"timezone"`
		Hours    map[string][]string `json:"hours"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "UTC", doc.Timezone)
	assert.Equal(t, []string{"09:00-12:00", "13:00-17:00"}, doc.Hours["monday"])
	assert.Empty(t, doc.Hours["sunday"])

	out, _, err = execute(t, "--hours", hours, "dump", "--structured")
	require.NoError(t, err)
	var structured map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &structured))
	assert.Len(t, structured, 7)
	assert.Equal(t, []string{"2024-05-15T09:00:00Z/2024-05-15T17:00:00Z"}, structured["wednesday"])
	assert.Equal(t, []string{"2024-05-20T09:00:00Z/2024-05-20T12:00:00Z", "2024-05-20T13:00:00Z/2024-05-20T17:00:00Z"}, structured["monday"])
}

func TestMalformedRanges(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", "hours:\n  monday: [\"09:00-17:00\", \"late\"]\n")

	out, logs, err := execute(t, "--hours", hours, "day", "monday")
	require.NoError(t, err)
	assert.Equal(t, "monday: 09:00-17:00\n", out)
	assert.Contains(t, logs, "dropping malformed opening range")

	_, _, err = execute(t, "--hours", hours, "--strict", "day", "monday")
	require.Error(t, err)
	assert.True(t, openhours.IsCode(err, openhours.ErrCodeInvalidRangeFormat))
}

func TestValidateCommand(t *testing.T) {
	clearEnv(t)
	good := writeHours(t, "good.yaml", officeHours)
	bad := writeHours(t, "bad.yaml", "hours:\n  friday: [\"17:00-09:00\"]\n")
	badZone := writeHours(t, "zone.yaml", "timezone: Mars/Olympus\nhours:\n  friday: [\"09:00-17:00\"]\n")

	out, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", out)

	out, _, err = execute(t, "validate", good, bad, badZone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 hours files are invalid")
	assert.Contains(t, out, good+": ok\n")
	assert.Contains(t, out, bad+": [INVALID_RANGE_FORMAT]")
	assert.Contains(t, out, badZone+": [INVALID_TIMEZONE]")
}

func TestConfigErrors(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hours file configured")

	hours := writeHours(t, "hours.yaml", officeHours)
	_, _, err = execute(t, "--hours", hours, "--timezone", "Mars/Olympus", "status")
	assert.Error(t, err)

	_, _, err = execute(t, "--hours", hours, "--at", "tomorrow", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse instant")
}

func TestParseInstant(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-15T10:00:00Z", time.Date(2024, 5, 15, 12, 0, 0, 0, paris)},
		{"2024-05-15 10:00", time.Date(2024, 5, 15, 10, 0, 0, 0, paris)},
		{"2024-05-15T10:00", time.Date(2024, 5, 15, 10, 0, 0, 0, paris)},
		{" 2024-05-15 ", time.Date(2024, 5, 15, 0, 0, 0, 0, paris)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInstant(tt.in, paris)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}

	_, err = parseInstant("15/05/2024", paris)
	assert.Error(t, err)
}

func TestDevMode(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	_, logs, err := execute(t, "--hours", hours, "status")
	require.NoError(t, err)
	assert.NotContains(t, logs, "query answered")

	_, logs, err = execute(t, "--hours", hours, "--mode", "dev", "status")
	require.NoError(t, err)
	assert.Contains(t, logs, "query answered")
	assert.Contains(t, logs, "command=status")
	assert.Contains(t, logs, "success_rate=100")
	assert.Contains(t, logs, "source=")

	t.Setenv("OPENHOURS_MODE", "dev")
	_, logs, err = execute(t, "--hours", hours, "--log-format", "json", "next")
	require.NoError(t, err)
	assert.Contains(t, logs, `"query_id"`)
}

func TestInvalidFileTimezone(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", "timezone: Mars/Olympus\nhours:\n  friday: [\"09:00-17:00\"]\n")

	// The timezone is rejected before --at is parsed.
	_, _, err := execute(t, "--hours", hours, "--at", "tomorrow", "status")
	require.Error(t, err)
	assert.True(t, openhours.IsCode(err, openhours.ErrCodeInvalidTimezone))
	assert.NotContains(t, err.Error(), "cannot parse instant")
}

func TestQueryFailureLogsErrorCode(t *testing.T) {
	clearEnv(t)
	hours := writeHours(t, "hours.yaml", officeHours)

	_, logs, err := execute(t, "--hours", hours, "duration", "--to", "2024-05-16", "--unit", "weeks")
	require.Error(t, err)
	assert.Contains(t, logs, "query failed")
	assert.Contains(t, logs, "error_code=INVALID_UNIT")
}
