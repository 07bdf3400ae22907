// Package report renders analytics results as CSV, JSON or HTML documents.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/shopspring/decimal"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

var ErrUnknownFormat = errors.New("unknown_report_format")

// ParseFormat accepts a format name or a file extension such as ".csv".
func ParseFormat(value string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".") {
	case "csv", "":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
}

// Document is the deterministic input of every renderer. Exactly one of
// Customers and Categories is rendered; Categories wins when set.
type Document struct {
	Title       string
	GeneratedAt time.Time
	AsOf        time.Time
	Window      string
	Customers   []domain.SummaryRow
	Categories  []domain.CategorySummary
}

func (d Document) isCategories() bool {
	return d.Categories != nil
}

type Renderer interface {
	Render(w io.Writer, doc Document) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatCSV:
		return csvRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatHTML:
		return newHTMLRenderer(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

type csvRenderer struct{}

// Render writes a header row followed by one row per record, in the fixed
// column order of the report.
func (csvRenderer) Render(w io.Writer, doc Document) error {
	writer := csv.NewWriter(w)

	if doc.isCategories() {
		if err := writer.Write(domain.CategorySummaryColumns); err != nil {
			return err
		}
		for _, c := range doc.Categories {
			row := []string{
				c.Category,
				formatMoney(c.TotalRevenue),
				c.TopProduct,
				strconv.FormatInt(c.TopProductQuantitySold, 10),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	} else {
		if err := writer.Write(domain.SummaryColumns); err != nil {
			return err
		}
		for _, r := range doc.Customers {
			row := []string{
				r.CustomerID,
				r.CustomerName,
				r.Email,
				formatMoney(r.TotalSpent),
				r.MostPurchasedCategory,
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

type jsonRenderer struct{}

type jsonHeader struct {
	Title       string     `json:"title,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	AsOf        *time.Time `json:"as_of,omitempty"`
	Window      string     `json:"window,omitempty"`
}

type jsonCustomers struct {
	jsonHeader
	Customers []domain.SummaryRow `json:"customers"`
}

type jsonCategories struct {
	jsonHeader
	Categories []domain.CategorySummary `json:"categories"`
}

func (jsonRenderer) Render(w io.Writer, doc Document) error {
	header := jsonHeader{
		Title:       doc.Title,
		GeneratedAt: optionalTime(doc.GeneratedAt),
		AsOf:        optionalTime(doc.AsOf),
		Window:      doc.Window,
	}

	var out any
	if doc.isCategories() {
		out = jsonCategories{jsonHeader: header, Categories: doc.Categories}
	} else {
		customers := doc.Customers
		if customers == nil {
			customers = []domain.SummaryRow{}
		}
		out = jsonCustomers{jsonHeader: header, Customers: customers}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}
