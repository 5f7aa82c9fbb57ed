package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rfm-segmentation/pkg/calculator"
	"rfm-segmentation/pkg/models"
)

// Options : configuration de rendu explicite (aucun état global).
type Options struct {
	Format string // table | csv | json
	Width  int    // largeur max en mode table, 0 = illimitée
	Locale string // tag BCP 47 pour les nombres en mode table
	Limit  int    // lignes max par vue en mode table, 0 = tout
}

// View : sous-ensemble nommé de clients (ex: best, worst).
type View struct {
	Name      string                     `json:"name"`
	Labels    []string                   `json:"labels"`
	Customers []models.SegmentedCustomer `json:"customers"`
}

// RFM regroupe tout ce qu'affiche le rapport RFM.
type RFM struct {
	Profile models.SourceProfile
	Result  *models.SegmentResult
	Summary []models.SegmentSummary
	Views   []View
}

// WriteRFM rend le rapport dans le format demandé.
func WriteRFM(w io.Writer, rep RFM, opts Options) error {
	switch opts.Format {
	case "json":
		return writeRFMJSON(w, rep)
	case "csv":
		return writeRFMCSV(w, rep)
	case "table", "":
		return writeRFMTable(w, rep, opts)
	default:
		return fmt.Errorf("format %q inconnu", opts.Format)
	}
}

type customerJSON struct {
	models.SegmentedCustomer
	models.LogScale
	Segments []string `json:"segments,omitempty"`
}

type rfmJSON struct {
	Profile    models.SourceProfile      `json:"profile"`
	Country    string                    `json:"country"`
	AsOf       string                    `json:"asOf"`
	RowsRead   int                       `json:"rowsRead"`
	RowsKept   int                       `json:"rowsKept"`
	Thresholds models.QuantileThresholds `json:"thresholds"`
	Summary    []models.SegmentSummary   `json:"summary"`
	Customers  []customerJSON            `json:"customers"`
	Views      []View                    `json:"views"`
}

func writeRFMJSON(w io.Writer, rep RFM) error {
	out := rfmJSON{
		Profile:    rep.Profile,
		Country:    rep.Result.Country,
		AsOf:       rep.Result.AsOf.Format("2006-01-02"),
		RowsRead:   rep.Result.RowsRead,
		RowsKept:   rep.Result.RowsKept,
		Thresholds: rep.Result.Thresholds,
		Summary:    rep.Summary,
		Views:      rep.Views,
	}
	membership := viewMembership(rep.Views)
	for _, c := range rep.Result.Customers {
		out.Customers = append(out.Customers, customerJSON{
			SegmentedCustomer: c,
			LogScale:          calculator.Log10(c),
			Segments:          membership[c.Label],
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeRFMCSV(w io.Writer, rep RFM) error {
	cw := csv.NewWriter(w)
	membership := viewMembership(rep.Views)

	_ = cw.Write([]string{
		"customer_id", "recency", "frequency", "monetary",
		"r_score", "f_score", "m_score", "rfm",
		"recency_log10", "frequency_log10", "monetary_log10", "segments",
	})
	for _, c := range rep.Result.Customers {
		l := calculator.Log10(c)
		_ = cw.Write([]string{
			c.CustomerID,
			strconv.Itoa(c.RecencyDays),
			strconv.Itoa(c.Frequency),
			c.Monetary.StringFixed(2),
			strconv.Itoa(c.RecencyScore),
			strconv.Itoa(c.FrequencyScore),
			strconv.Itoa(c.MonetaryScore),
			c.Label,
			fmtLog(l.Recency),
			fmtLog(l.Frequency),
			fmtLog(l.Monetary),
			strings.Join(membership[c.Label], "|"),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeRFMTable(w io.Writer, rep RFM, opts Options) error {
	p := printer(opts.Locale)
	res := rep.Result

	var sections []string
	sections = append(sections, title(fmt.Sprintf("RFM %s au %s", res.Country, res.AsOf.Format("2006-01-02"))))
	sections = append(sections, p.Sprintf("lignes lues=%d ; retenues=%d ; clients=%d",
		res.RowsRead, res.RowsKept, len(res.Customers)))

	if len(rep.Profile.Countries) > 0 {
		rows := make([][]string, 0)
		for _, c := range limit(rep.Profile.Countries, opts.Limit) {
			rows = append(rows, []string{c.Country, p.Sprintf("%d", c.Customers)})
		}
		sections = append(sections, title("Clients par pays"), render([]string{"Pays", "Clients"}, rows))
	}

	th := res.Thresholds
	sections = append(sections, title("Seuils"), render(
		[]string{"Mesure", "P25", "P50", "P75"},
		[][]string{
			quantileRow(p, "Recency", th.Recency),
			quantileRow(p, "Frequency", th.Frequency),
			quantileRow(p, "Monetary", th.Monetary),
		},
	))

	summary := make([][]string, 0, len(rep.Summary))
	for _, s := range rep.Summary {
		summary = append(summary, []string{s.Label, p.Sprintf("%d", s.Customers), money(p, s.Monetary)})
	}
	sections = append(sections, title("Segments"), render([]string{"RFM", "Clients", "Monetary"}, summary))

	for _, v := range rep.Views {
		rows := make([][]string, 0)
		for _, c := range limit(v.Customers, opts.Limit) {
			rows = append(rows, []string{
				c.CustomerID,
				p.Sprintf("%d", c.RecencyDays),
				p.Sprintf("%d", c.Frequency),
				money(p, c.Monetary),
				c.Label,
			})
		}
		heading := fmt.Sprintf("%s (%s) : %d clients", v.Name, strings.Join(v.Labels, ", "), len(v.Customers))
		sections = append(sections, title(heading),
			render([]string{"Client", "Recency", "Frequency", "Monetary", "RFM"}, rows))
	}

	return writeSections(w, sections, opts.Width)
}

func quantileRow(p *message.Printer, name string, q models.Quantiles) []string {
	return []string{name, money(p, q.P25), money(p, q.P50), money(p, q.P75)}
}

func viewMembership(views []View) map[string][]string {
	m := make(map[string][]string)
	for _, v := range views {
		for _, l := range v.Labels {
			m[l] = append(m[l], v.Name)
		}
	}
	return m
}

func fmtLog(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

func money(p *message.Printer, d decimal.Decimal) string {
	return p.Sprintf("%.2f", d.InexactFloat64())
}

func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func title(s string) string {
	return titleStyle.Render(s)
}

func render(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func writeSections(w io.Writer, sections []string, width int) error {
	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
