package version

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// Заполняются через -ldflags "-X keeper-server/internal/version.BuildDate=..."
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

var buildEpoch = time.Date(
	2026, time.January, 1,
	0, 0, 0, 0,
	time.UTC,
)

// VersionInfo - метаданные сборки для /version и стартового лога.
type VersionInfo struct {
	BuildID    int    `json:"build_id"`
	BuildDate  string `json:"build_date"`
	Commit     string `json:"commit"`
	Branch     string `json:"branch,omitempty"`
	CI         string `json:"ci,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// buildIDFor - номер сборки: число суток от buildEpoch до даты.
func buildIDFor(date string) (int, error) {
	if date == "" {
		return 0, errors.New("build date is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}

	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, buildEpoch.Format("2006-01-02"))
	}

	// Обе даты в UTC, DST не мешает.
	return int(t.Sub(buildEpoch) / (24 * time.Hour)), nil
}

// vcsInfo достаёт коммит и дату из метаданных go build, когда ldflags не заданы.
func vcsInfo() (commit, date, goVersion string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", ""
	}
	goVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				date = t.UTC().Format("2006-01-02")
			}
		}
	}
	return commit, date, goVersion
}

// Info собирает метаданные: ldflags важнее данных go build.
func Info() VersionInfo {
	commit, date, goVersion := vcsInfo()

	info := VersionInfo{
		BuildDate: coalesce(BuildDate, date),
		Commit:    coalesce(BuildCommit, commit),
		Branch:    BuildBranch,
		CI:        BuildCI,
		GoVersion: goVersion,
	}

	id, err := buildIDFor(info.BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

// String - одна строка для лога при старте сервера.
func String() string {
	info := Info()
	if !info.Calculated {
		return fmt.Sprintf("keeper-server dev build (%s)", info.Error)
	}

	s := fmt.Sprintf("keeper-server build %d (%s) commit %s",
		info.BuildID, info.BuildDate, coalesce(info.Commit, "unknown"))
	if info.Branch != "" {
		s += " on " + info.Branch
	}
	return s + ", ci " + coalesce(info.CI, "local")
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
