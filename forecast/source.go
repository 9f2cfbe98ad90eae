package forecast

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/fsnotify/fsnotify"
)

// Snapshot is one observed state of a forecast file: the decoded
// document, or the error that prevented decoding it.
type Snapshot struct {
	ID   string
	Path string
	Doc  Document
	Err  error
}

// Source owns forecast file snapshots. Each opened file becomes a
// long-lived mutation that re-emits whenever the file changes on disk,
// so a fetcher process rewriting the file live-updates every reader.
type Source struct {
	pool   *stream.MutationPool[string, Snapshot]
	appCtx context.Context
}

func NewSource(appCtx context.Context, mutator *stream.Mutator) *Source {
	return &Source{
		pool:   stream.NewMutationPool[string, Snapshot](mutator),
		appCtx: appCtx,
	}
}

func (s *Source) SnapshotStream(ctx context.Context) <-chan map[string]*stream.Mutation[Snapshot] {
	return s.pool.Stream(ctx)
}

func (s *Source) getMutation(ctx context.Context, id string) *stream.Mutation[Snapshot] {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return (<-s.SnapshotStream(ctx))[id]
}

// StreamSnapshot streams every state of one opened file.
func (s *Source) StreamSnapshot(ctx context.Context, id string) <-chan Snapshot {
	return s.getMutation(ctx, id).Stream(ctx)
}

// Latest streams the most recently opened file's snapshots, switching
// over when a newer file is opened. Snapshot IDs sort by open time.
func (s *Source) Latest(ctx context.Context) <-chan Snapshot {
	return stream.Multiplex(s.pool.Stream(ctx), func(ctx context.Context, state string, mutations map[string]*stream.Mutation[Snapshot]) (<-chan Snapshot, string) {
		newest := ""
		var newestMut *stream.Mutation[Snapshot]
		for id, m := range mutations {
			if id > newest {
				newest = id
				newestMut = m
			}
		}
		if newestMut == nil || newest == state {
			return nil, state
		}
		return newestMut.Stream(ctx), newest
	})
}

func generateSnapshotID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

// Open starts watching the given forecast file and returns the
// snapshot ID readers use to stream it.
func (s *Source) Open(path string) string {
	id := generateSnapshotID()
	s.watchFile(id, path)
	return id
}

// LoadFromFile opens a forecast file chosen via the system dialog.
// Only real files can be watched; other readers decode once.
func (s *Source) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile("json")
	if err != nil {
		return "", err
	}
	named, ok := file.(interface{ Name() string })
	if !ok {
		id := generateSnapshotID()
		s.decodeOnce(id, file)
		return id, nil
	}
	path := named.Name()
	file.Close()
	return s.Open(path), nil
}

func (s *Source) decodeOnce(id string, r io.ReadCloser) {
	stream.Mutate(s.pool, id, func(ctx context.Context) <-chan Snapshot {
		out := make(chan Snapshot, 1)
		go func() {
			defer close(out)
			defer r.Close()
			snap := Snapshot{ID: id}
			data, err := io.ReadAll(r)
			if err != nil {
				snap.Err = err
			} else {
				snap.Doc, snap.Err = Decode(data)
			}
			out <- snap
		}()
		return out
	})
}

// watchFile emits one snapshot now and another for every on-disk change.
// The watch covers the file's directory: fetchers replace the file with
// a rename, which would silently drop a watch on the file itself.
func (s *Source) watchFile(id, path string) {
	stream.Mutate(s.pool, id, func(ctx context.Context) <-chan Snapshot {
		out := make(chan Snapshot, 1)
		go func() {
			defer close(out)
			snap := Snapshot{ID: id, Path: path}
			emit := func() {
				data, err := os.ReadFile(path)
				if err != nil {
					snap.Err = err
				} else {
					snap.Doc, snap.Err = Decode(data)
				}
				select {
				case out <- snap:
				case <-ctx.Done():
				}
			}
			emit()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				snap.Err = fmt.Errorf("failed creating file watcher: %w", err)
				out <- snap
				return
			}
			defer watcher.Close()
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				snap.Err = fmt.Errorf("failed watching %q: %w", path, err)
				out <- snap
				return
			}
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if filepath.Clean(ev.Name) != filepath.Clean(path) {
						continue
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
						emit()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("forecast watch error: %v", err)
				}
			}
		}()
		return out
	})
}

// LaunchFetch starts a snowsight-fetch process writing to path and
// opens the output file for live display. The fetcher binary is looked
// up next to our own executable first, then on $PATH.
func (s *Source) LaunchFetch(path string, extraArgs ...string) (string, error) {
	args := append([]string{"-out", path}, extraArgs...)
	if err := launchFetcher(s.appCtx, args); err != nil {
		return "", err
	}
	return s.Open(path), nil
}

func runFetcherWithName(ctx context.Context, exeName string, args []string) error {
	cmd := exec.CommandContext(ctx, exeName, args...)
	return cmd.Start()
}

func launchFetcher(ctx context.Context, args []string) error {
	const fetcherExeName = "snowsight-fetch"
	execPath, err := os.Executable()
	if err == nil {
		fetcherExe := filepath.Join(filepath.Dir(execPath), fetcherExeName)
		if runtime.GOOS == "windows" {
			fetcherExe += ".exe"
		}
		log.Printf("Looking for %q", fetcherExe)
		if err := runFetcherWithName(ctx, fetcherExe, args); err == nil {
			return nil
		}
	}

	log.Printf("Searching path for fetcher")
	fetcherExe, err := exec.LookPath(fetcherExeName)
	if err != nil {
		return fmt.Errorf("unable to locate %q in $PATH: %w", fetcherExeName, err)
	}

	if err := runFetcherWithName(ctx, fetcherExe, args); err != nil {
		return fmt.Errorf("failed launching %q: %w", fetcherExe, err)
	}
	return nil
}
