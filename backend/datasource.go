package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gioui.org/x/explorer"
	"github.com/fsnotify/fsnotify"
)

// Session is one loaded version of a chart file. A reloaded file produces a new
// session with the same Path.
type Session struct {
	ID string
	// Path is the file the charts were read from, or the name of the stream.
	Path   string
	Charts []Chart
	Err    error
}

type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

type sourceState struct {
	current    Session
	hasCurrent bool
	// watched is the absolute path reloaded on change, if any.
	watched string
	subs    map[int]chan Session
	nextSub int
	closed  bool
}

// Datasource loads chart files and publishes every loaded version as a Session.
// Files opened with LoadFile are reloaded whenever they change on disk.
type Datasource struct {
	appCtx  context.Context
	watcher *fsnotify.Watcher
	state   RWBox[sourceState]
	done    chan struct{}
}

func NewDatasource(appCtx context.Context) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	ds := &Datasource{
		appCtx:  appCtx,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	ds.state.Write(func(s *sourceState) {
		s.subs = make(map[int]chan Session)
	})
	go ds.watch()
	return ds, nil
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

// Sessions returns a channel delivering the most recent session immediately (if there
// is one) and every later session until ctx is cancelled. A slow reader only misses
// intermediate sessions, never the latest one.
func (d *Datasource) Sessions(ctx context.Context) <-chan Session {
	out := make(chan Session, 1)
	var (
		id     int
		closed bool
	)
	d.state.Write(func(s *sourceState) {
		if closed = s.closed; closed {
			return
		}
		id = s.nextSub
		s.nextSub++
		s.subs[id] = out
		if s.hasCurrent {
			out <- s.current
		}
	})
	if closed {
		close(out)
		return out
	}
	go func() {
		select {
		case <-ctx.Done():
		case <-d.appCtx.Done():
		case <-d.done:
		}
		d.state.Write(func(s *sourceState) {
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}()
	return out
}

func (d *Datasource) publish(session Session) {
	d.state.Write(func(s *sourceState) {
		s.current = session
		s.hasCurrent = true
		for _, sub := range s.subs {
			// Replace any session the subscriber has not read yet.
			select {
			case <-sub:
			default:
			}
			sub <- session
		}
	})
}

// Current returns the most recently published session.
func (d *Datasource) Current() (session Session, ok bool) {
	d.state.Read(func(s *sourceState) {
		session, ok = s.current, s.hasCurrent
	})
	return session, ok
}

func (d *Datasource) readFile(path string) Session {
	session := Session{ID: generateSessionID(), Path: path}
	f, err := os.Open(path)
	if err != nil {
		session.Err = fmt.Errorf("failed opening %q: %w", path, err)
		return session
	}
	defer f.Close()
	session.Charts, err = Parse(f)
	if err != nil {
		session.Err = fmt.Errorf("failed parsing %q: %w", path, err)
	}
	return session
}

// LoadFile reads the chart file at path, publishes it, and watches it for changes
// until another source is loaded. The returned error only reports problems watching
// the file; read and parse errors are delivered in the session.
func (d *Datasource) LoadFile(path string) (Session, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Session{}, fmt.Errorf("failed resolving %q: %w", path, err)
	}
	var watchErr error
	d.state.Write(func(s *sourceState) {
		watchErr = d.rewatch(s, abs)
	})
	session := d.readFile(abs)
	d.publish(session)
	return session, watchErr
}

// LoadStream parses charts from r, closes it, and publishes the result under the
// given name. Any watched file stops being watched.
func (d *Datasource) LoadStream(name string, r io.ReadCloser) Session {
	d.state.Write(func(s *sourceState) {
		if err := d.rewatch(s, ""); err != nil {
			log.Printf("failed to stop watching %q: %v", s.watched, err)
		}
	})
	session := Session{ID: generateSessionID(), Path: name}
	charts, err := Parse(r)
	session.Charts = charts
	session.Err = errors.Join(err, r.Close())
	if session.Err != nil {
		session.Err = fmt.Errorf("failed loading %q: %w", name, session.Err)
	}
	d.publish(session)
	return session
}

// LoadFromExplorer asks the user to pick a chart file and loads it. It blocks until
// the file dialog is dismissed, so it must not be called from the UI goroutine.
func (d *Datasource) LoadFromExplorer(expl *explorer.Explorer) error {
	file, err := expl.ChooseFile("json")
	if err != nil {
		return fmt.Errorf("failed choosing chart file: %w", err)
	}
	if f, ok := file.(*os.File); ok {
		name := f.Name()
		if err := f.Close(); err != nil {
			log.Printf("failed closing %q: %v", name, err)
		}
		_, err := d.LoadFile(name)
		return err
	}
	d.LoadStream("chosen file", file)
	return nil
}

// rewatch switches the watched file. The directory is watched rather than the file
// itself so that files replaced by renaming keep being reloaded.
func (d *Datasource) rewatch(s *sourceState, abs string) error {
	if s.watched == abs {
		return nil
	}
	var err error
	if s.watched != "" {
		if rmErr := d.watcher.Remove(filepath.Dir(s.watched)); rmErr != nil && !errors.Is(rmErr, fsnotify.ErrNonExistentWatch) {
			err = rmErr
		}
	}
	s.watched = abs
	if abs != "" {
		err = errors.Join(err, d.watcher.Add(filepath.Dir(abs)))
	}
	return err
}

func (d *Datasource) watch() {
	for {
		select {
		case <-d.appCtx.Done():
			return
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			var watched string
			d.state.Read(func(s *sourceState) {
				watched = s.watched
			})
			if watched == "" || filepath.Clean(ev.Name) != watched {
				continue
			}
			log.Printf("reloading %q", watched)
			d.publish(d.readFile(watched))
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher error: %v", err)
		}
	}
}

// Close stops watching files and ends every session stream.
func (d *Datasource) Close() error {
	var already bool
	d.state.Write(func(s *sourceState) {
		already = s.closed
		s.closed = true
	})
	if already {
		return nil
	}
	close(d.done)
	return d.watcher.Close()
}
