package report

import (
	"html/template"
	"io"
	"time"
)

const reportHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .report {
      max-width: 960px;
      margin: 0 auto;
    }
    .header {
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta {
      font-size: 13px;
      color: #6b7280;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    td.amount { text-align: right; }
    .empty { color: #6b7280; font-style: italic; }
  </style>
</head>
<body>
  <div class="report">
    <div class="header">
      <h1>{{.Title}}</h1>
      <div class="meta">
        {{if not .AsOf.IsZero}}<div>As of: {{formatTime .AsOf}}</div>{{end}}
        {{if .Window}}<div>Window: {{.Window}}</div>{{end}}
        {{if not .GeneratedAt.IsZero}}<div>Generated: {{formatTime .GeneratedAt}}</div>{{end}}
      </div>
    </div>

    {{if .Categories}}
    <table>
      <thead>
        <tr>
          <th>Category</th>
          <th>Total Revenue</th>
          <th>Top Product</th>
          <th>Top Product Quantity Sold</th>
        </tr>
      </thead>
      <tbody>
        {{range .Categories}}
        <tr>
          <td>{{.Category}}</td>
          <td class="amount">{{formatMoney .TotalRevenue}}</td>
          <td>{{.TopProduct}}</td>
          <td class="amount">{{.TopProductQuantitySold}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{else if .Customers}}
    <table>
      <thead>
        <tr>
          <th>#</th>
          <th>Customer ID</th>
          <th>Name</th>
          <th>Email</th>
          <th>Total Spent</th>
          <th>Most Purchased Category</th>
        </tr>
      </thead>
      <tbody>
        {{range $i, $row := .Customers}}
        <tr>
          <td>{{inc $i}}</td>
          <td>{{$row.CustomerID}}</td>
          <td>{{$row.CustomerName}}</td>
          <td>{{$row.Email}}</td>
          <td class="amount">{{formatMoney $row.TotalSpent}}</td>
          <td>{{$row.MostPurchasedCategory}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{else}}
    <div class="empty">No qualifying records.</div>
    {{end}}
  </div>
</body>
</html>
`

type htmlRenderer struct {
	tpl *template.Template
}

func newHTMLRenderer() *htmlRenderer {
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatTime":  formatTime,
		"inc":         func(i int) int { return i + 1 },
	}
	return &htmlRenderer{
		tpl: template.Must(template.New("report").Funcs(funcs).Parse(reportHTMLTemplate)),
	}
}

func (r *htmlRenderer) Render(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = "Spending Report"
	}
	return r.tpl.Execute(w, doc)
}

func formatTime(value time.Time) string {
	return value.UTC().Format("2006-01-02 15:04 MST")
}
