package config

import (
	"log/slog"
	"time"

	"github.com/mnemo-ai/mnemo/pkg/repository/memory"
	"github.com/mnemo-ai/mnemo/pkg/service/archival"
	"github.com/mnemo-ai/mnemo/pkg/service/assembler"
	"github.com/urfave/cli/v3"
)

// Memory holds the tuning knobs of the memory subsystem
type Memory struct {
	sessionTurns      int
	sessionTTL        time.Duration
	contextBudget     int
	searchTopN        int
	searchThreshold   float64
	archivalInterval  time.Duration
	activeWindow      time.Duration
	retentionWindow   time.Duration
	archivalBatchSize int
}

// Flags returns CLI flags for memory subsystem tuning
func (m *Memory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "session-turns",
			Usage:       "Maximum number of turns kept per user session",
			Value:       memory.DefaultSessionTurns,
			Sources:     cli.EnvVars("MNEMO_SESSION_TURNS"),
			Destination: &m.sessionTurns,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Idle lifetime of a user session buffer",
			Value:       memory.DefaultSessionTTL,
			Sources:     cli.EnvVars("MNEMO_SESSION_TTL"),
			Destination: &m.sessionTTL,
		},
		&cli.IntFlag{
			Name:        "context-budget",
			Usage:       "Character budget of an assembled context payload",
			Value:       assembler.DefaultBudget,
			Sources:     cli.EnvVars("MNEMO_CONTEXT_BUDGET"),
			Destination: &m.contextBudget,
		},
		&cli.IntFlag{
			Name:        "search-top-n",
			Usage:       "Number of semantic matches considered during assembly",
			Value:       assembler.DefaultTopN,
			Sources:     cli.EnvVars("MNEMO_SEARCH_TOP_N"),
			Destination: &m.searchTopN,
		},
		&cli.FloatFlag{
			Name:        "search-threshold",
			Usage:       "Minimum cosine similarity for semantic matches",
			Value:       assembler.DefaultThreshold,
			Sources:     cli.EnvVars("MNEMO_SEARCH_THRESHOLD"),
			Destination: &m.searchThreshold,
		},
		&cli.DurationFlag{
			Name:        "archival-interval",
			Usage:       "Cadence of the background archival job",
			Value:       archival.DefaultInterval,
			Sources:     cli.EnvVars("MNEMO_ARCHIVAL_INTERVAL"),
			Destination: &m.archivalInterval,
		},
		&cli.DurationFlag{
			Name:        "active-window",
			Usage:       "How long a fragment stays active without access",
			Value:       archival.DefaultActiveWindow,
			Sources:     cli.EnvVars("MNEMO_ACTIVE_WINDOW"),
			Destination: &m.activeWindow,
		},
		&cli.DurationFlag{
			Name:        "retention-window",
			Usage:       "Total fragment lifetime without access before expiry",
			Value:       archival.DefaultRetentionWindow,
			Sources:     cli.EnvVars("MNEMO_RETENTION_WINDOW"),
			Destination: &m.retentionWindow,
		},
		&cli.IntFlag{
			Name:        "archival-batch-size",
			Usage:       "Number of fragments listed per archival batch",
			Value:       archival.DefaultBatchSize,
			Sources:     cli.EnvVars("MNEMO_ARCHIVAL_BATCH_SIZE"),
			Destination: &m.archivalBatchSize,
		},
	}
}

// LogValue renders the configuration for startup logging
func (m *Memory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("session_turns", m.sessionTurns),
		slog.Duration("session_ttl", m.sessionTTL),
		slog.Int("context_budget", m.contextBudget),
		slog.Int("search_top_n", m.searchTopN),
		slog.Float64("search_threshold", m.searchThreshold),
		slog.Duration("archival_interval", m.archivalInterval),
		slog.Duration("active_window", m.activeWindow),
		slog.Duration("retention_window", m.retentionWindow),
		slog.Int("archival_batch_size", m.archivalBatchSize),
	)
}

// SessionStore builds the in-process session buffer from the flags
func (m *Memory) SessionStore() *memory.SessionStore {
	return memory.NewSessionStore(m.sessionTurns, m.sessionTTL)
}

// AssemblerOptions returns assembler options derived from the flags
func (m *Memory) AssemblerOptions() []assembler.Option {
	return []assembler.Option{
		assembler.WithBudget(m.contextBudget),
		assembler.WithSessionTurns(m.sessionTurns),
		assembler.WithTopN(m.searchTopN),
		assembler.WithThreshold(float32(m.searchThreshold)),
	}
}

// ArchivalOptions returns archival worker options derived from the flags
func (m *Memory) ArchivalOptions() []archival.Option {
	return []archival.Option{
		archival.WithInterval(m.archivalInterval),
		archival.WithWindows(m.activeWindow, m.retentionWindow),
		archival.WithBatchSize(m.archivalBatchSize),
	}
}
