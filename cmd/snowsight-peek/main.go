// Command snowsight-peek renders a quick terminal view of a forecast
// document, for eyeballing fetched data without opening the dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/snowsight/snowsight/forecast"
)

var runColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
}

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250")).
	Bold(true)

var labelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240"))

var borderStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

func listVariables(doc forecast.Document) {
	fmt.Println(titleStyle.Render(header(doc)))
	for _, v := range doc.Variables {
		models := make([]string, 0, len(v.Runs))
		for _, run := range v.Runs {
			models = append(models, run.Model)
		}
		line := fmt.Sprintf("  %-18s %s", v.Key, labelStyle.Render(v.Name))
		if v.Unit != "" {
			line += dimStyle.Render(" [" + v.Unit + "]")
		}
		line += dimStyle.Render("  runs: " + strings.Join(models, ", "))
		fmt.Println(line)
	}
}

func header(doc forecast.Document) string {
	return fmt.Sprintf("%s (%.4f, %.4f) - %d hours, generated %s",
		doc.Location, doc.Latitude, doc.Longitude, doc.Len(),
		doc.Generated.Format("2006-01-02 15:04 UTC"))
}

// plotSamples copies a run for asciigraph, replacing leading and
// trailing NaN with the nearest real value so the plot does not
// collapse. Interior NaN stays as a gap.
func plotSamples(s forecast.Samples) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	first, last := -1, -1
	for i, v := range out {
		if !math.IsNaN(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}
	for i := 0; i < first; i++ {
		out[i] = out[first]
	}
	for i := last + 1; i < len(out); i++ {
		out[i] = out[last]
	}
	return out
}

func plotVariable(v *forecast.Variable, width, height int) {
	for i, run := range v.Runs {
		data := plotSamples(run.Samples)
		if data == nil {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  %s/%s: no data", v.Key, run.Model)))
			continue
		}
		caption := v.Name
		if v.Unit != "" {
			caption += " [" + v.Unit + "]"
		}
		if run.Model != "" {
			caption += " - " + run.Model
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
			asciigraph.SeriesColors(runColors[i%len(runColors)]),
		)
		fmt.Println(borderStyle.Render(graph))
	}
}

func main() {
	var (
		file     = flag.String("file", "snowsight-forecast.json", "forecast document to read")
		variable = flag.String("var", "", "variable key to plot (default: all)")
		list     = flag.Bool("list", false, "list variables and exit")
		width    = flag.Int("width", 72, "graph width in characters")
		height   = flag.Int("height", 10, "graph height in lines")
	)
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed reading %q: %v", *file, err)
	}
	doc, err := forecast.Decode(data)
	if err != nil {
		log.Fatalf("failed decoding %q: %v", *file, err)
	}

	if *list {
		listVariables(doc)
		return
	}

	fmt.Println(titleStyle.Render(header(doc)))
	if *variable != "" {
		v, ok := doc.Variable(*variable)
		if !ok {
			log.Fatalf("no variable %q in %s, try -list", *variable, *file)
		}
		plotVariable(v, *width, *height)
		return
	}
	for i := range doc.Variables {
		plotVariable(&doc.Variables[i], *width, *height)
	}
}
