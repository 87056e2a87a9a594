package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
)

// sqliteTimeLayout sorts lexicographically in time order
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect int

const (
	postgresDialect dialect = iota
	sqliteDialect
)

// sqlStore holds the queries shared by both backends. Queries are written
// with ? placeholders and rebound for postgres.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

const summaryColumns = `id, run_id, namespace, container, start_time, end_time, sample_count,
	avg_cpu_usage, cpu_request, cpu_limit, p95_cpu_usage,
	avg_memory_mb, memory_request_mb, memory_limit_mb, p95_memory_mb,
	cpu_pattern, memory_pattern, report_path, created_at`

func (s *sqlStore) migrate(ctx context.Context, name string) error {
	schema, err := migrationsFS.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "failed to read schema")
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to execute schema")
		}
	}
	return nil
}

func (s *sqlStore) query(q string) string {
	if s.dialect != postgresDialect {
		return q
	}
	return rebind(q)
}

// rebind turns ? placeholders into $1, $2, ...
func rebind(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) encodeTime(t time.Time) any {
	if s.dialect == sqliteDialect {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

// SaveSummaries inserts one row per container in a single transaction
func (s *sqlStore) SaveSummaries(ctx context.Context, summaries []models.ContainerSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.query(fmt.Sprintf(
		`INSERT INTO container_summaries (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summaryColumns)))
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, sum := range summaries {
		runID := sum.RunID
		if runID == "" {
			runID = uuid.New().String()
		}
		createdAt := sum.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, sum.Namespace, sum.Container,
			sum.StartTime, sum.EndTime, sum.SampleCount,
			nullFloat(sum.AvgCPUUsage), nullFloat(sum.CPURequest), nullFloat(sum.CPULimit), nullFloat(sum.P95CPUUsage),
			nullFloat(sum.AvgMemoryMB), nullFloat(sum.MemoryRequestMB), nullFloat(sum.MemoryLimitMB), nullFloat(sum.P95MemoryMB),
			sum.CPUPattern, sum.MemoryPattern, sum.ReportPath, s.encodeTime(createdAt),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to save summary for %s/%s", sum.Namespace, sum.Container)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit summaries")
}

// ListSummaries returns the most recent summaries for a namespace
func (s *sqlStore) ListSummaries(ctx context.Context, namespace string, limit int) ([]models.ContainerSummary, error) {
	q := fmt.Sprintf(`SELECT %s FROM container_summaries
		WHERE namespace = ?
		ORDER BY created_at DESC, container ASC
		LIMIT ?`, summaryColumns)

	rows, err := s.db.QueryContext(ctx, s.query(q), namespace, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list summaries")
	}
	defer rows.Close()

	var summaries []models.ContainerSummary
	for rows.Next() {
		var sum models.ContainerSummary
		var id string
		var avgCPU, cpuReq, cpuLim, p95CPU sql.NullFloat64
		var avgMem, memReq, memLim, p95Mem sql.NullFloat64
		var createdAt timeValue

		err := rows.Scan(
			&id, &sum.RunID, &sum.Namespace, &sum.Container,
			&sum.StartTime, &sum.EndTime, &sum.SampleCount,
			&avgCPU, &cpuReq, &cpuLim, &p95CPU,
			&avgMem, &memReq, &memLim, &p95Mem,
			&sum.CPUPattern, &sum.MemoryPattern, &sum.ReportPath, &createdAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan summary")
		}

		sum.AvgCPUUsage = floatOrNaN(avgCPU)
		sum.CPURequest = floatOrNaN(cpuReq)
		sum.CPULimit = floatOrNaN(cpuLim)
		sum.P95CPUUsage = floatOrNaN(p95CPU)
		sum.AvgMemoryMB = floatOrNaN(avgMem)
		sum.MemoryRequestMB = floatOrNaN(memReq)
		sum.MemoryLimitMB = floatOrNaN(memLim)
		sum.P95MemoryMB = floatOrNaN(p95Mem)
		sum.CreatedAt = createdAt.Time

		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}

// GetRunStats aggregates every stored summary of a namespace
func (s *sqlStore) GetRunStats(ctx context.Context, namespace string) (*models.RunStats, error) {
	q := `SELECT COUNT(DISTINCT run_id), COUNT(DISTINCT container),
			AVG(avg_cpu_usage), AVG(avg_memory_mb), MAX(created_at)
		FROM container_summaries
		WHERE namespace = ?`

	stats := &models.RunStats{Namespace: namespace}
	var avgCPU, avgMem sql.NullFloat64
	var last timeValue

	err := s.db.QueryRowContext(ctx, s.query(q), namespace).Scan(
		&stats.Runs, &stats.Containers, &avgCPU, &avgMem, &last,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get run stats")
	}

	stats.AvgCPUUsage = floatOrNaN(avgCPU)
	stats.AvgMemoryMB = floatOrNaN(avgMem)
	stats.LastGenerated = last.Time
	return stats, nil
}

// Ping checks database connectivity
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// timeValue scans timestamps from either backend: native time values from
// postgres, text from sqlite
type timeValue struct {
	time.Time
}

func (t *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return errors.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (t *timeValue) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return errors.Wrapf(err, "parse timestamp %q", s)
	}
	t.Time = parsed
	return nil
}
