package backend

import (
	"context"
	"fmt"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

// WindowState holds the backend resources of one window.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle holds the backend resources shared by every window.
type Bundle struct {
	Datasource *Datasource
}

func NewBundle(ctx context.Context) (Bundle, error) {
	ds, err := NewDatasource(ctx)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed creating datasource: %w", err)
	}
	return Bundle{
		Datasource: ds,
	}, nil
}
