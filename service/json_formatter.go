package service

import (
	"encoding/json"
	"io"

	"github.com/qgate-dev/qgate/domain"
)

// JSONFormatter renders a QualityReport as its canonical, lossless JSON
// serialization. Serializing and deserializing through this format yields a
// field-equal report, which makes the JSON artifact the recommended format
// for machine consumption and regression testing.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON report renderer
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Render implements domain.ReportRenderer
func (f *JSONFormatter) Render(report *domain.QualityReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return domain.NewRenderError("json", err)
	}
	return nil
}

// ReadReport reconstructs a QualityReport from its JSON serialization
func ReadReport(r io.Reader) (*domain.QualityReport, error) {
	var report domain.QualityReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidInput, "malformed report JSON", err)
	}
	return &report, nil
}
