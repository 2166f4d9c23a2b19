// Package report defines the surveillance report document and assembles it
// from the per-sample tables and the resistance matcher output.
package report

import "encoding/xml"

// WholeGenome is the coverage entry name used for the whole-genome summary.
const WholeGenome = "whole_genome"

// Document is one sample's surveillance report. Field order is the XML
// element order. Section wrappers are never omitted, so empty sections are
// still written as empty elements.
type Document struct {
	XMLName      xml.Name          `xml:"surveillance_report"`
	Title        string            `xml:"title"`
	SampleID     string            `xml:"sample_id"`
	Date         string            `xml:"date"`
	Pipeline     Pipeline          `xml:"pipeline"`
	Lineage      Lineage           `xml:"lineage"`
	Coverage     CoverageSection   `xml:"coverage"`
	CoverageGaps CoverageSection   `xml:"coverage_gaps"`
	Deletions    DeletionSection   `xml:"deletions"`
	Mutations    MutationSection   `xml:"mutations"`
	LowQuality   LowQualitySection `xml:"low_quality"`
}

// Pipeline identifies the pipeline that produced the sample data.
type Pipeline struct {
	Name    string `xml:"name"`
	Version string `xml:"version"`
}

// Lineage is the isolate's lineage call.
type Lineage struct {
	Code string `xml:"code"`
	Name string `xml:"name"`
}

// CoverageSection lists coverage entries, whole genome first when present.
type CoverageSection struct {
	Genes []CoverageEntry `xml:"gene"`
}

// CoverageEntry is the depth and percent covered for a region. Values are
// kept as text so whole-genome figures pass through as reported.
type CoverageEntry struct {
	Name    string `xml:"name,attr"`
	Depth   string `xml:"depth"`
	Percent string `xml:"percent"`
}

// DeletionSection lists deleted loci in genes of interest.
type DeletionSection struct {
	Loci []DeletionEntry `xml:"loci"`
}

// DeletionEntry is one deleted locus and its deletion type.
type DeletionEntry struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type"`
}

// MutationSection lists the genes with resistance-relevant changes.
type MutationSection struct {
	SNPs []SNP `xml:"snp"`
}

// SNP is one gene's resistance-relevant nucleotide changes.
type SNP struct {
	Gene       string      `xml:"gene,attr"`
	NucChanges []NucChange `xml:"nuchange"`
}

// NucChange is one observed nucleotide change and the drugs it confers
// resistance to.
type NucChange struct {
	Name        string       `xml:"name,attr"`
	AAChange    string       `xml:"aachange,attr"`
	Annotation  string       `xml:"annotation"`
	CodonPos    string       `xml:"codonpos"`
	RefPos      string       `xml:"refpos"`
	RefNuc      string       `xml:"refnuc"`
	AltNuc      string       `xml:"altnuc"`
	Resistances []Resistance `xml:"resistance"`
}

// Resistance is one drug call with its confidence tier.
type Resistance struct {
	Drug       string `xml:"drug"`
	Confidence string `xml:"confidence"`
}

// LowQualitySection lists the sample's low-quality segments.
type LowQualitySection struct {
	Segments []SegmentEntry `xml:"segment"`
}

// SegmentEntry is a low-quality segment at a reference position.
type SegmentEntry struct {
	RefPos     string `xml:"refpos,attr"`
	Ref        string `xml:"ref"`
	Alt        string `xml:"alt"`
	QualDetail string `xml:"qual_det"`
}
