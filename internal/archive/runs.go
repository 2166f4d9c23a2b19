package archive

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-amr/internal/report"
)

// Run is one archived report.
type Run struct {
	ID              string
	SampleID        string
	ReportDate      string
	ArchivedAt      time.Time
	Title           string
	PipelineName    string
	PipelineVersion string
	LineageCode     string
	LineageName     string
	Reference       FileFingerprint
	Genes           int64
	DrugCalls       int64
}

// WriteReport archives doc and its flattened resistance rows, returning the
// new run ID. ref identifies the reference catalog used; a zero value is
// stored as NULL.
func (s *Store) WriteReport(ctx context.Context, doc *report.Document, ref FileFingerprint) (string, error) {
	runID := uuid.NewString()

	var refPath, refSize, refMtime any
	if ref.Path != "" {
		refPath, refSize, refMtime = ref.Path, ref.Size, ref.ModTime
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO report_runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, doc.SampleID, doc.Date, s.now(), doc.Title,
		doc.Pipeline.Name, doc.Pipeline.Version,
		doc.Lineage.Code, doc.Lineage.Name,
		refPath, refSize, refMtime,
		int64(len(doc.Mutations.SNPs)), int64(doc.CalledDrugs()),
	); err != nil {
		return "", fmt.Errorf("insert report run: %w", err)
	}

	if err := s.appendCalls(ctx, runID, doc); err != nil {
		if _, delErr := s.db.ExecContext(ctx, "DELETE FROM report_runs WHERE run_id = ?", runID); delErr != nil {
			return "", fmt.Errorf("%w (cleanup failed: %v)", err, delErr)
		}
		return "", err
	}
	return runID, nil
}

// appendCalls batch-inserts the report's resistance rows using the Appender API.
func (s *Store) appendCalls(ctx context.Context, runID string, doc *report.Document) error {
	rows := doc.MutationRows()
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "resistance_calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, r := range rows {
		if err := appender.AppendRow(
			runID, doc.SampleID, int64(i),
			r.Gene, r.NucChange, r.AAChange, r.Drug, r.Confidence,
		); err != nil {
			return fmt.Errorf("append resistance call: %w", err)
		}
	}

	return appender.Flush()
}

// Runs lists archived runs in archive order. An empty sampleID lists all.
func (s *Store) Runs(ctx context.Context, sampleID string) ([]Run, error) {
	query := `SELECT
		run_id, sample_id, report_date, archived_at, title,
		pipeline_name, pipeline_version, lineage_code, lineage_name,
		reference_path, reference_size, reference_mtime,
		genes, drug_calls
		FROM report_runs`
	var args []any
	if sampleID != "" {
		query += " WHERE sample_id = ?"
		args = append(args, sampleID)
	}
	query += " ORDER BY archived_at, run_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var refPath sql.NullString
		var refSize sql.NullInt64
		var refMtime sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.SampleID, &r.ReportDate, &r.ArchivedAt, &r.Title,
			&r.PipelineName, &r.PipelineVersion, &r.LineageCode, &r.LineageName,
			&refPath, &refSize, &refMtime,
			&r.Genes, &r.DrugCalls,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Reference = FileFingerprint{Path: refPath.String, Size: refSize.Int64, ModTime: refMtime.Time}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
