// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/verifier"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	dto "github.com/prometheus/client_model/go"
)

// statusView is the JSON form of one verifier result.
type statusView struct {
	Verifier                    string              `json:"verifier"`
	Source                      verifier.SourceType `json:"source"`
	Validity                    verifier.Validity   `json:"validity"`
	Issuer                      string              `json:"issuer,omitempty"`
	RevocationDate              *time.Time          `json:"revocationDate,omitempty"`
	RevocationObjectIssuingTime *time.Time          `json:"revocationObjectIssuingTime,omitempty"`
}

// reportView is the JSON form of a [verifier.Report].
type reportView struct {
	Subject        string       `json:"subject"`
	SerialNumber   string       `json:"serialNumber"`
	ValidationDate time.Time    `json:"validationDate"`
	Valid          bool         `json:"valid"`
	Results        []statusView `json:"results"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func subjectName(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return cert.Subject.String()
}

func newReportView(report *verifier.Report) reportView {
	view := reportView{
		Subject:        subjectName(report.Certificate),
		ValidationDate: report.ValidationDate,
		Valid:          report.Valid,
		Results:        make([]statusView, len(report.Statuses)),
	}
	if report.Certificate != nil && report.Certificate.SerialNumber != nil {
		view.SerialNumber = report.Certificate.SerialNumber.String()
	}

	for i, status := range report.Statuses {
		view.Results[i] = statusView{
			Verifier:                    report.Names[i],
			Source:                      status.Source,
			Validity:                    status.Validity,
			Issuer:                      subjectName(status.Issuer),
			RevocationDate:              optionalTime(status.RevocationDate),
			RevocationObjectIssuingTime: optionalTime(status.RevocationObjectIssuingTime),
		}
	}
	return view
}

// writeJSON writes the report as indented JSON.
func writeJSON(w io.Writer, report *verifier.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newReportView(report)); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// writeTable writes the report as a markdown table followed by the verdict.
func writeTable(w io.Writer, report *verifier.Report) error {
	view := newReportView(report)

	fmt.Fprintf(w, "Certificate: %s (serial %s)\n", view.Subject, view.SerialNumber)
	fmt.Fprintf(w, "Reference time: %s\n\n", formatTime(view.ValidationDate))

	if len(view.Results) > 0 {
		table := tablewriter.NewTable(w,
			tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
		)
		table.Header([]string{"Verifier", "Source", "Validity", "Revoked At", "Revocation Data Issued"})

		rows := make([][]string, 0, len(view.Results))
		for i, status := range report.Statuses {
			rows = append(rows, []string{
				report.Names[i],
				status.Source.String(),
				status.Validity.String(),
				formatTime(status.RevocationDate),
				formatTime(status.RevocationObjectIssuingTime),
			})
		}

		if err := table.Bulk(rows); err != nil {
			return fmt.Errorf("error building report table: %w", err)
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("error rendering report table: %w", err)
		}
		fmt.Fprintln(w)
	}

	verdict := "NOT VALID"
	if view.Valid {
		verdict = "VALID"
	}
	fmt.Fprintf(w, "Result: %s\n", verdict)
	return nil
}

func labelString(m *dto.Metric) string {
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
	}
	return strings.Join(pairs, ",")
}

func metricValue(kind dto.MetricType, m *dto.Metric) string {
	switch kind {
	case dto.MetricType_COUNTER:
		return strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
	case dto.MetricType_GAUGE:
		return strconv.FormatFloat(m.GetGauge().GetValue(), 'f', -1, 64)
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%.3fs", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "-"
	}
}

// writeStats writes gathered metric families as a markdown table.
func writeStats(w io.Writer, families []*dto.MetricFamily) error {
	var rows [][]string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			rows = append(rows, []string{mf.GetName(), labelString(m), metricValue(mf.GetType(), m)})
		}
	}

	fmt.Fprintln(w)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No metrics recorded")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Metric", "Labels", "Value"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("error building stats table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering stats table: %w", err)
	}
	return nil
}
