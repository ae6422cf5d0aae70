// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package report renders a recommendation as a single PDF document.
//
// The document has a title, the investor profile, the category with the
// model prediction and any override, the matching funds with their links,
// and a disclaimer. Rendering is pure: the same Input and GeneratedAt yield
// the same bytes.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/metrics"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// ErrNoDecision is returned when Input carries no classification.
var ErrNoDecision = errors.New("report requires a decision")

// ContentType is the MIME type of rendered reports.
const ContentType = "application/pdf"

// Disclaimer is printed at the end of every report.
const Disclaimer = "This report is generated automatically from the information you provided " +
	"and a statistical model trained on synthetic data. It is not investment advice. " +
	"Past returns do not guarantee future performance. Read all scheme related documents " +
	"carefully and consult a registered adviser before investing."

// Config controls document metadata and encoding.
type Config struct {
	Title  string
	Author string

	// Compress deflates page streams. Disable it to inspect output in tests.
	Compress bool
}

// DefaultConfig returns the settings used in production.
func DefaultConfig() Config {
	return Config{
		Title:    "Investment Recommendation Report",
		Author:   "Fundwise",
		Compress: true,
	}
}

// Input is everything a report shows.
type Input struct {
	Profile  profile.Profile
	Decision *recommend.Decision
	Funds    []funds.FundRecord

	// GeneratedAt is printed on the report and stored as the PDF creation
	// date. Zero means now.
	GeneratedAt time.Time
}

// Renderer produces PDF reports. It holds no per-document state and is safe
// for concurrent use.
type Renderer struct {
	config Config
	now    func() time.Time
}

// NewRenderer creates a renderer, filling unset fields from DefaultConfig.
func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Author == "" {
		cfg.Author = def.Author
	}
	return &Renderer{config: cfg, now: time.Now}
}

// Filename returns the attachment name for a report generated at t.
func Filename(t time.Time) string {
	return "fundwise-report-" + t.UTC().Format("20060102-150405") + ".pdf"
}

// Layout, in millimetres on A4 portrait.
const (
	marginMM    = 15.0
	pageWidthMM = 210.0
	contentW    = pageWidthMM - 2*marginMM
	rowH        = 7.0
	labelW      = 55.0
)

// Render draws the report and returns the PDF bytes.
func (r *Renderer) Render(in Input) (data []byte, err error) {
	defer func() { metrics.RecordReport(err) }()

	if in.Decision == nil {
		return nil, ErrNoDecision
	}
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = r.now()
	}
	generated = generated.UTC()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM+5)
	pdf.SetCompression(r.config.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetTitle(r.config.Title, true)
	pdf.SetAuthor(r.config.Author, true)
	pdf.SetCreator("fundwise", false)
	pdf.AliasNbPages("")

	// Core fonts are cp1252; translate so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 12, tr(r.config.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated "+generated.Format("2 January 2006 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawProfile(pdf, tr, in.Profile)
	drawDecision(pdf, tr, in.Decision)
	drawFunds(pdf, tr, in.Decision.Category, in.Funds)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(contentW, 4, tr(Disclaimer), "T", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func labelValue(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(labelW, rowH, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentW-labelW, rowH, value, "", 1, "L", false, 0, "")
}

func drawProfile(pdf *fpdf.Fpdf, tr func(string) string, p profile.Profile) {
	sectionHeading(pdf, "Investor Profile")
	labelValue(pdf, "Age", strconv.Itoa(p.Age))
	labelValue(pdf, "Monthly income", formatAmount(p.MonthlyIncome))
	labelValue(pdf, "Savings", formatAmount(p.Savings))
	labelValue(pdf, "Risk appetite", tr(string(p.RiskAppetite)))
	labelValue(pdf, "Investment goal", tr(string(p.Goal)))
	labelValue(pdf, "Investment horizon", tr(string(p.Horizon)))
}

func drawDecision(pdf *fpdf.Fpdf, tr func(string) string, d *recommend.Decision) {
	sectionHeading(pdf, "Recommendation")

	pdf.SetFont("Helvetica", "B", 16)
	r, g, b := categoryColor(d.Category)
	pdf.SetTextColor(r, g, b)
	pdf.CellFormat(0, 10, tr(string(d.Category)), "", 1, "L", false, 0, "")

	labelValue(pdf, "Model prediction", fmt.Sprintf("%s (%.0f%% confidence)", d.ModelCategory, d.Confidence*100))
	labelValue(pdf, "Override rule", describeOverride(d.OverrideReason))
	labelValue(pdf, "Class probabilities", formatProbabilities(d.Probabilities))
	labelValue(pdf, "Model", fmt.Sprintf("%s v%d", d.Algorithm, d.ModelVersion))
}

// Fund table column widths; they sum to contentW.
var fundCols = []struct {
	title string
	width float64
	align string
}{
	{"Fund", 74, "L"},
	{"Returns", 22, "C"},
	{"Rating", 18, "C"},
	{"Risk", 26, "C"},
	{"Links", 40, "C"},
}

func drawFunds(pdf *fpdf.Fpdf, tr func(string) string, category profile.Category, records []funds.FundRecord) {
	sectionHeading(pdf, "Recommended Funds")

	if len(records) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(contentW, rowH, tr(fmt.Sprintf("No funds are listed for the %s category.", category)), "", "L", false)
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(225, 232, 245)
	pdf.SetTextColor(20, 40, 80)
	for _, c := range fundCols {
		pdf.CellFormat(c.width, rowH, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, rec := range records {
		fill := i%2 == 1
		pdf.SetFillColor(245, 247, 250)
		pdf.SetTextColor(0, 0, 0)

		cells := []string{rec.Name, rec.Returns, rec.Rating, rec.Risk}
		for j, text := range cells {
			c := fundCols[j]
			pdf.CellFormat(c.width, rowH, fit(pdf, tr(text), c.width-2), "1", 0, c.align, fill, 0, "")
		}
		drawLinks(pdf, rec, fundCols[4].width, fill)
		pdf.Ln(-1)
	}
}

// drawLinks splits the last column between the available fund links.
func drawLinks(pdf *fpdf.Fpdf, rec funds.FundRecord, width float64, fill bool) {
	type link struct{ label, url string }
	var links []link
	if rec.ETMoneyLink != "" {
		links = append(links, link{"ETMoney", rec.ETMoneyLink})
	}
	if rec.GrowwLink != "" {
		links = append(links, link{"Groww", rec.GrowwLink})
	}
	if len(links) == 0 {
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(width, rowH, "-", "1", 0, "C", fill, 0, "")
		return
	}

	pdf.SetTextColor(30, 80, 200)
	w := width / float64(len(links))
	for _, l := range links {
		pdf.CellFormat(w, rowH, l.label, "1", 0, "C", fill, 0, l.url)
	}
	pdf.SetTextColor(0, 0, 0)
}

// fit truncates s with an ellipsis so it renders within w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && pdf.GetStringWidth(s+ellipsis) > w {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + ellipsis
}

func describeOverride(reason recommend.OverrideReason) string {
	switch reason {
	case recommend.OverrideNone:
		return "None (model prediction used)"
	case recommend.OverrideLowRiskShortTerm:
		return "Low risk appetite with a 1-3 year horizon"
	case recommend.OverrideHighRiskHighIncome:
		return "High risk appetite, income above 80,000, 5+ year horizon"
	default:
		return string(reason)
	}
}

func categoryColor(c profile.Category) (r, g, b int) {
	switch c {
	case profile.Conservative:
		return 30, 110, 60
	case profile.Balanced:
		return 190, 120, 20
	case profile.Aggressive:
		return 180, 40, 40
	default:
		return 0, 0, 0
	}
}

func formatProbabilities(probs map[profile.Category]float64) string {
	if len(probs) == 0 {
		return "-"
	}
	cats := make([]profile.Category, 0, len(probs))
	for c := range probs {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Rank() < cats[j].Rank() })

	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", c, probs[c]*100))
	}
	return strings.Join(parts, ", ")
}

// formatAmount groups thousands with commas and drops a zero fraction.
func formatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac != "00" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
