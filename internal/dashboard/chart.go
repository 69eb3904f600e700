package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	chartWidth   = 720
	chartHeight  = 240
	chartPadding = 32.0
	chartTicks   = 4
)

var errEmptyChart = errors.New("dashboard: chart needs at least one point")

type series struct {
	label  string
	color  string
	values []float64
}

// RenderChart draws sales and expenses per day as an SVG document.
func RenderChart(points []ChartPoint, title string) (string, error) {
	if len(points) == 0 {
		return "", errEmptyChart
	}
	lines := []series{
		{label: "Ventas", color: "#2563eb"},
		{label: "Gastos", color: "#dc2626"},
	}
	maxVal := 0.0
	for _, p := range points {
		lines[0].values = append(lines[0].values, p.Sales)
		lines[1].values = append(lines[1].values, p.Expenses)
		maxVal = math.Max(maxVal, math.Max(p.Sales, p.Expenses))
	}
	if maxVal == 0 {
		maxVal = 1
	}
	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding
	x := func(i int) float64 {
		if len(points) == 1 {
			return chartPadding + plotW/2
		}
		return chartPadding + float64(i)*plotW/float64(len(points)-1)
	}
	y := func(v float64) float64 { return chartPadding + plotH - v/maxVal*plotH }

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		chartWidth, chartHeight, template.HTMLEscapeString(title))
	fmt.Fprintf(&b, `<title>%s</title>`, template.HTMLEscapeString(title))
	for i := 0; i <= chartTicks; i++ {
		v := maxVal * float64(i) / chartTicks
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#e2e8f0" stroke-width="0.5"></line>`,
			chartPadding, y(v), chartPadding+plotW, y(v))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" font-size="10" fill="#475569" text-anchor="end">%.0f</text>`,
			chartPadding-4, y(v)+3, v)
	}
	for _, s := range lines {
		var path strings.Builder
		for i, v := range s.values {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(i), y(v))
		}
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" data-series="%s"></path>`,
			strings.TrimSpace(path.String()), s.color, s.label)
	}
	labelEvery := int(math.Ceil(float64(len(points)) / 8))
	for i, p := range points {
		if i%labelEvery != 0 && i != len(points)-1 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" font-size="10" fill="#475569" text-anchor="middle">%s</text>`,
			x(i), chartPadding+plotH+14, p.Date[5:])
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}
