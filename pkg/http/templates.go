package http

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"liyu1981.xyz/tank-console/pkg/telemetry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"number":  formatNumber,
	"percent": telemetry.FormatPercent,
	"fixed2": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"datetime": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	// fill gauge inside a 200px tall tank drawn from y=10
	"gaugeH": func(fill float64) float64 { return 200 * fill / 100 },
	"gaugeY": func(fill float64) float64 { return 10 + 200 - 200*fill/100 },
	"ref": func(id *int64) string {
		if id == nil {
			return "-"
		}
		return strconv.FormatInt(*id, 10)
	},
}

// LoadTemplates parses the page templates; every page shares layout.tmpl.
func LoadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"))
}
