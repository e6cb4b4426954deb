package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// stopSignals end a periodic rewrite.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var palette = []string{"#3DC23F", "#F34C44", "#3896E8", "#E8AF14", "#4BD964", "#9E6DD4"}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: generate chart data in the Telegram contest JSON format
Usage:

 %[1]s > charts.json

OR

 %[1]s -output charts.json -every 2s & telechart -data charts.json

With -every, the output file is rewritten with fresh data until interrupted, which
exercises the viewer's reload on change.

`, os.Args[0])
	flag.PrintDefaults()
}

type chartJSON struct {
	Columns [][]any           `json:"columns"`
	Types   map[string]string `json:"types"`
	Names   map[string]string `json:"names"`
	Colors  map[string]string `json:"colors"`
}

type generator struct {
	charts, lines, points int
	start                 time.Time
	interval              time.Duration
	rng                   *rand.Rand
}

func (g *generator) chart() chartJSON {
	c := chartJSON{
		Types:  map[string]string{"x": "x"},
		Names:  map[string]string{},
		Colors: map[string]string{},
	}
	x := []any{"x"}
	for i := 0; i < g.points; i++ {
		x = append(x, g.start.Add(time.Duration(i)*g.interval).UnixMilli())
	}
	c.Columns = append(c.Columns, x)
	for l := 0; l < g.lines; l++ {
		label := fmt.Sprintf("y%d", l)
		c.Types[label] = "line"
		c.Names[label] = fmt.Sprintf("#%d", l)
		c.Colors[label] = palette[l%len(palette)]
		column := []any{label}
		// A random walk that never goes negative.
		v := int64(g.rng.Intn(200) + 20)
		for i := 0; i < g.points; i++ {
			v = max(0, v+int64(g.rng.Intn(41)-20))
			column = append(column, v)
		}
		c.Columns = append(c.Columns, column)
	}
	return c
}

func (g *generator) write(output io.Writer) error {
	charts := make([]chartJSON, 0, g.charts)
	for i := 0; i < g.charts; i++ {
		charts = append(charts, g.chart())
	}
	if err := json.NewEncoder(output).Encode(charts); err != nil {
		return fmt.Errorf("failed writing charts: %w", err)
	}
	return nil
}

// writeFile replaces the contents of name in a single rename so that readers never
// observe a partial file.
func (g *generator) writeFile(name string) error {
	tmp := name + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed opening %q: %w", tmp, err)
	}
	if err := g.write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed closing %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		return fmt.Errorf("failed replacing %q: %w", name, err)
	}
	return nil
}

// rewrite writes the charts to name every interval until ctx is done.
func (g *generator) rewrite(ctx context.Context, name string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.writeFile(name); err != nil {
				log.Printf("failed rewriting charts: %v", err)
			}
		}
	}
}

func main() {
	flag.Usage = usage
	charts := flag.Int("charts", 5, "Number of charts")
	lines := flag.Int("lines", 2, "Number of lines per chart")
	points := flag.Int("points", 112, "Number of samples per line")
	interval := flag.Duration("interval", 24*time.Hour, "Time between samples")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	every := flag.Duration("every", 0, "Rewrite the output file at this interval until interrupted (requires -output)")
	outputName := flag.String("output", "-", "Output file for the chart JSON")
	flag.Parse()

	if *charts < 1 || *lines < 1 || *points < 2 {
		log.Fatalf("need at least 1 chart, 1 line and 2 points, got %d, %d and %d", *charts, *lines, *points)
	}
	g := &generator{
		charts:   *charts,
		lines:    *lines,
		points:   *points,
		start:    time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC),
		interval: *interval,
		rng:      rand.New(rand.NewSource(*seed)),
	}

	if *outputName == "-" {
		if *every > 0 {
			log.Fatalf("-every requires -output")
		}
		if err := g.write(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := g.writeFile(*outputName); err != nil {
		log.Fatal(err)
	}
	if *every <= 0 {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()
	g.rewrite(ctx, *outputName, *every)
}
