package renderer

import (
	"strings"
	"text/template"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// funcs returns the template functions formatting amounts in currency.
func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money":    func(n folio.Number) string { return n.Money(currency) },
		"signed":   func(n folio.Number) string { return n.SignedMoney(currency) },
		"decmoney": func(d decimal.Decimal) string { return folio.N(d).Money(currency) },
		"join":     strings.Join,
	}
}

// page is the HTML document around a rendered report. The body is already
// HTML, it is not escaped.
var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))
