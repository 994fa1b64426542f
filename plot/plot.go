// Package plot renders audio-feature bar charts as inline SVG.
package plot

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/pkg/errors"
)

const (
	chartWidth = 640
	barHeight  = 22
	barPadding = 6
	labelWidth = 200
	topMargin  = 40
)

var chartTmpl = template.Must(template.New("bar").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<text x="{{.TitleX}}" y="24" text-anchor="middle" font-size="16" font-family="sans-serif">{{.Title}}</text>
{{- range .Bars}}
<text x="{{.LabelX}}" y="{{.TextY}}" text-anchor="end" font-size="11" font-family="sans-serif">{{.Label}}</text>
<rect x="{{.BarX}}" y="{{.BarY}}" width="{{.BarWidth}}" height="{{.BarHeight}}" fill="#1db954"/>
<text x="{{.ValueX}}" y="{{.TextY}}" font-size="11" font-family="sans-serif">{{.Value}}</text>
{{- end}}
</svg>`))

type bar struct {
	Label     string
	Value     string
	LabelX    int
	BarX      int
	BarY      int
	BarWidth  int
	BarHeight int
	TextY     int
	ValueX    int
}

type chart struct {
	Title  string
	Width  int
	Height int
	TitleX int
	Bars   []bar
}

// Bar renders one horizontal bar per label. Values are scaled against the
// largest magnitude so negative-valued features (loudness) still produce
// visible bars.
func Bar(labels []string, values []float64, title string) (template.HTML, error) {
	if len(labels) != len(values) {
		return "", errors.Errorf("plot.Bar %d labels for %d values", len(labels), len(values))
	}

	maxMagnitude := 0.0
	for _, v := range values {
		m := v
		if m < 0 {
			m = -m
		}
		if m > maxMagnitude {
			maxMagnitude = m
		}
	}
	if maxMagnitude == 0 {
		maxMagnitude = 1
	}

	usable := chartWidth - labelWidth - 80
	c := chart{
		Title:  title,
		Width:  chartWidth,
		Height: topMargin + len(labels)*(barHeight+barPadding),
		TitleX: chartWidth / 2,
	}

	for i, label := range labels {
		m := values[i]
		if m < 0 {
			m = -m
		}
		w := int(m / maxMagnitude * float64(usable))
		y := topMargin + i*(barHeight+barPadding)
		c.Bars = append(c.Bars, bar{
			Label:     truncate(label, 30),
			Value:     fmt.Sprintf("%.3g", values[i]),
			LabelX:    labelWidth - 8,
			BarX:      labelWidth,
			BarY:      y,
			BarWidth:  w,
			BarHeight: barHeight,
			TextY:     y + barHeight - 6,
			ValueX:    labelWidth + w + 6,
		})
	}

	var sb strings.Builder
	if err := chartTmpl.Execute(&sb, c); err != nil {
		return "", errors.Wrap(err, "plot.Bar Execute")
	}
	return template.HTML(sb.String()), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
