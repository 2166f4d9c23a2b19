package report

// MutationRow is one line of the flattened resistance list. Drug and
// Confidence are empty for a change with no drug call.
type MutationRow struct {
	Gene       string
	NucChange  string
	AAChange   string
	Drug       string
	Confidence string
}

// MutationRows flattens the mutations section: one row per drug call, or a
// single drug-less row for a change without any.
func (d *Document) MutationRows() []MutationRow {
	var rows []MutationRow
	for _, snp := range d.Mutations.SNPs {
		for _, nc := range snp.NucChanges {
			base := MutationRow{Gene: snp.Gene, NucChange: nc.Name, AAChange: nc.AAChange}
			if len(nc.Resistances) == 0 {
				rows = append(rows, base)
				continue
			}
			for _, r := range nc.Resistances {
				row := base
				row.Drug = r.Drug
				row.Confidence = r.Confidence
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// CalledDrugs returns the number of drug calls in the report.
func (d *Document) CalledDrugs() int {
	n := 0
	for _, snp := range d.Mutations.SNPs {
		for _, nc := range snp.NucChanges {
			n += len(nc.Resistances)
		}
	}
	return n
}
