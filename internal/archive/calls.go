package archive

import (
	"context"
	"fmt"
)

// Call is one archived resistance row. Drug and Confidence are empty for an
// ungraded change.
type Call struct {
	RunID      string
	SampleID   string
	Gene       string
	NucChange  string
	AAChange   string
	Drug       string
	Confidence string
}

const callColumns = `c.run_id, c.sample_id, c.gene, c.nuc_change, c.aa_change, c.drug, c.confidence
		FROM resistance_calls c JOIN report_runs r ON c.run_id = r.run_id`

const callOrder = ` ORDER BY r.archived_at, c.run_id, c.position`

// SearchByGene returns every archived row for a gene.
func (s *Store) SearchByGene(ctx context.Context, gene string) ([]Call, error) {
	return s.searchCalls(ctx, "SELECT "+callColumns+" WHERE c.gene = ?"+callOrder, gene)
}

// SearchByDrug returns every archived drug call for a drug.
func (s *Store) SearchByDrug(ctx context.Context, drug string) ([]Call, error) {
	return s.searchCalls(ctx, "SELECT "+callColumns+" WHERE c.drug = ?"+callOrder, drug)
}

// SearchByGeneAndDrug returns archived drug calls matching both gene and drug.
func (s *Store) SearchByGeneAndDrug(ctx context.Context, gene, drug string) ([]Call, error) {
	return s.searchCalls(ctx, "SELECT "+callColumns+" WHERE c.gene = ? AND c.drug = ?"+callOrder, gene, drug)
}

// Calls returns the rows archived for one run.
func (s *Store) Calls(ctx context.Context, runID string) ([]Call, error) {
	return s.searchCalls(ctx, "SELECT "+callColumns+" WHERE c.run_id = ?"+callOrder, runID)
}

func (s *Store) searchCalls(ctx context.Context, query string, args ...any) ([]Call, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resistance calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		if err := rows.Scan(&c.RunID, &c.SampleID, &c.Gene, &c.NucChange, &c.AAChange, &c.Drug, &c.Confidence); err != nil {
			return nil, fmt.Errorf("scan resistance call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resistance calls: %w", err)
	}
	return calls, nil
}
