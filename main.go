package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/telechart/backend"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: interactive viewer for chart data in the Telegram contest JSON format
Usage:

 %[1]s [-data file.json]

Files opened on the command line or through the open button are reloaded whenever
they change on disk. Sample data can be generated with telechart-gen.

`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	dataPath := flag.String("data", "", "Chart data file to open on launch")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bundle, err := backend.NewBundle(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if *dataPath != "" {
		if _, err := bundle.Datasource.LoadFile(*dataPath); err != nil {
			log.Printf("failed loading %q: %v", *dataPath, err)
		}
	}
	go func() {
		w := app.NewWindow(app.Title("Telechart"), app.Size(unit.Dp(800), unit.Dp(700)))
		err := loop(ctx, bundle, w)
		if closeErr := bundle.Datasource.Close(); closeErr != nil {
			log.Printf("failed closing datasource: %v", closeErr)
		}
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(ctx context.Context, bundle backend.Bundle, w *app.Window) error {
	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, expl, w.Invalidate)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
