package sqlstore

import (
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

// Dialect captures the differences between the supported SQL engines
type Dialect struct {
	Name        string
	Driver      string
	schema      []string
	lockForEdit string
	numbered    bool
}

// SQLite returns the dialect for the pure-Go SQLite driver
func SQLite() Dialect {
	return Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS chain_analyses (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				event_date TEXT NOT NULL,
				event_time TEXT,
				precipitating_event TEXT NOT NULL,
				primary_emotion TEXT NOT NULL,
				emotional_intensity INTEGER NOT NULL,
				chain_links TEXT NOT NULL,
				vulnerabilities TEXT NOT NULL,
				interventions TEXT NOT NULL,
				wellness_score INTEGER,
				notes TEXT,
				created_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_analyses_created ON chain_analyses (created_at DESC, seq DESC)`,
		},
	}
}

// Postgres returns the dialect for Postgres through pgx
func Postgres() Dialect {
	return Dialect{
		Name:   "postgres",
		Driver: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS chain_analyses (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				event_date TEXT NOT NULL,
				event_time TEXT,
				precipitating_event TEXT NOT NULL,
				primary_emotion TEXT NOT NULL,
				emotional_intensity INTEGER NOT NULL,
				chain_links JSONB NOT NULL,
				vulnerabilities JSONB NOT NULL,
				interventions JSONB NOT NULL,
				wellness_score INTEGER,
				notes TEXT,
				created_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_analyses_created ON chain_analyses (created_at DESC, seq DESC)`,
		},
		lockForEdit: " FOR UPDATE",
		numbered:    true,
	}
}

// DialectFor resolves a storage driver name
func DialectFor(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite(), true
	case "postgres", "postgresql", "pgx":
		return Postgres(), true
	}
	return Dialect{}, false
}

// rebind rewrites ? placeholders into $n for engines that number them
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
