package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Filename returns the output file name for a sample's report with the given
// extension, e.g. "S81_report.xml".
func Filename(sampleID, ext string) string {
	return sampleID + "_report." + ext
}

// WriteXML encodes doc as indented XML with a declaration header.
func WriteXML(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}

// WriteFile writes doc as XML to path. On an encoding failure the partial
// file is removed.
func WriteFile(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteXML(f, doc); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// ReadXML decodes a report previously written by WriteXML.
func ReadXML(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &doc, nil
}

// ReadFile reads a report XML file.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return ReadXML(f)
}
