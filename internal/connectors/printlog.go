package connectors

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chat-concierge/internal/common/config"
	"chat-concierge/internal/common/database"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/common/metrics"
)

// Lookup summaries surfaced verbatim to the user.
const (
	SummaryNoJobs      = "No jobs found"
	SummaryLookupError = "Error retrieving jobs"
)

const recentJobsQuery = `
SELECT pr.printer_serial, pr.print_guid, j.name, pr.print_started_at
FROM print AS pr
INNER JOIN job AS j
ON pr.printer_serial = j.printer_serial
AND pr.job_guid = j.job_guid
WHERE pr.printer_serial = $1
ORDER BY pr.print_started_at DESC
LIMIT $2`

// PrintJob is one row of the recent-jobs join.
type PrintJob struct {
	PrinterSerial string    `json:"printerSerial"`
	PrintGUID     string    `json:"printGuid"`
	JobName       string    `json:"jobName"`
	StartedAt     time.Time `json:"startedAt"`
}

// PrintLogStore answers "what printed recently on this machine" from the
// telemetry warehouse, with a short-lived cache in front of it.
type PrintLogStore struct {
	db      *sql.DB
	cache   *database.RedisClient
	maxRows int
	ttl     time.Duration
	logger  logger.Logger
}

// NewPrintLogStore builds a store over the warehouse connection. cache may be
// nil, which disables caching.
func NewPrintLogStore(db *sql.DB, cache *database.RedisClient, cfg config.LookupConfig, log logger.Logger) *PrintLogStore {
	return &PrintLogStore{
		db:      db,
		cache:   cache,
		maxRows: cfg.MaxRows,
		ttl:     time.Duration(cfg.CacheTTLSec) * time.Second,
		logger:  log.With(map[string]interface{}{"component": "print-log"}),
	}
}

// RecentJobs returns the most recent jobs for a printer serial plus a display
// summary of the job names, newline separated. Failures do not propagate:
// the caller gets an empty result and the error sentinel, and the detail is
// logged here.
func (s *PrintLogStore) RecentJobs(ctx context.Context, serial string) ([]PrintJob, string) {
	if jobs, ok := s.cacheGet(ctx, serial); ok {
		metrics.LookupQueries.WithLabelValues("cache_hit").Inc()
		return jobs, summarize(jobs)
	}

	rows, err := s.db.QueryContext(ctx, recentJobsQuery, serial, s.maxRows)
	if err != nil {
		s.logger.WithError(err).Error("recent jobs query failed", map[string]interface{}{
			"printerSerial": serial,
		})
		metrics.LookupQueries.WithLabelValues("error").Inc()
		return nil, SummaryLookupError
	}
	defer rows.Close()

	var jobs []PrintJob
	for rows.Next() {
		var job PrintJob
		if err := rows.Scan(&job.PrinterSerial, &job.PrintGUID, &job.JobName, &job.StartedAt); err != nil {
			s.logger.WithError(err).Error("recent jobs scan failed", map[string]interface{}{
				"printerSerial": serial,
			})
			metrics.LookupQueries.WithLabelValues("error").Inc()
			return nil, SummaryLookupError
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Error("recent jobs iteration failed", map[string]interface{}{
			"printerSerial": serial,
		})
		metrics.LookupQueries.WithLabelValues("error").Inc()
		return nil, SummaryLookupError
	}

	if len(jobs) == 0 {
		metrics.LookupQueries.WithLabelValues("empty").Inc()
		return []PrintJob{}, SummaryNoJobs
	}

	metrics.LookupQueries.WithLabelValues("hit").Inc()
	s.cacheSet(ctx, serial, jobs)
	return jobs, summarize(jobs)
}

func summarize(jobs []PrintJob) string {
	var names []string
	for _, j := range jobs {
		if j.JobName != "" {
			names = append(names, j.JobName)
		}
	}
	if len(names) == 0 {
		return SummaryNoJobs
	}
	return strings.Join(names, "\n")
}

func cacheKey(serial string) string {
	return fmt.Sprintf("recent-jobs:%s", serial)
}

func (s *PrintLogStore) cacheGet(ctx context.Context, serial string) ([]PrintJob, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(serial))
	if err != nil {
		return nil, false
	}
	var jobs []PrintJob
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, false
	}
	return jobs, true
}

// Only non-empty results are cached so a freshly uploaded log shows up on the
// next ask.
func (s *PrintLogStore) cacheSet(ctx context.Context, serial string, jobs []PrintJob) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(serial), string(raw), s.ttl); err != nil {
		s.logger.WithError(err).Warn("recent jobs cache write failed", map[string]interface{}{
			"printerSerial": serial,
		})
	}
}
