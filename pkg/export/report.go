/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: HTML report for a written batch: run statistics, a sample of generated programs
and, once computed, the pairwise distance distribution as a histogram.
*/

package export

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/similarity"
)

const (
	ReportFile = "index.html"

	// ReportSamples is the number of programs listed in the report
	ReportSamples = 25
)

// ReportData is the template input
type ReportData struct {
	Title        string
	Batch        *generator.Batch
	Samples      []string
	Distribution *similarity.Distribution
	Bars         []Bar
}

// Bar is one histogram bucket scaled for display
type Bar struct {
	Lower   float64
	Count   int
	Percent float64
}

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// NewReportData collects the report view of a batch. dist may be nil.
func NewReportData(batch *generator.Batch, dist *similarity.Distribution) *ReportData {
	data := &ReportData{
		Title:        batch.Grammar,
		Batch:        batch,
		Distribution: dist,
	}

	for _, p := range batch.Complete() {
		if len(data.Samples) == ReportSamples {
			break
		}
		data.Samples = append(data.Samples, programText(p))
	}

	if dist != nil {
		peak := 0
		for _, b := range dist.Histogram {
			peak = max(peak, b.Count)
		}
		for _, b := range dist.Histogram {
			bar := Bar{Lower: b.Lower, Count: b.Count}
			if peak > 0 {
				bar.Percent = 100 * float64(b.Count) / float64(peak)
			}
			data.Bars = append(data.Bars, bar)
		}
	}
	return data
}

// WriteReport renders the report of batch into dir/index.html
func WriteReport(dir string, batch *generator.Batch, dist *similarity.Distribution) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, ReportFile)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, NewReportData(batch, dist)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return path, nil
}
