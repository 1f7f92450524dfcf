package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"semgraph/internal/skeleton"
)

const watchDebounce = 250 * time.Millisecond

// watchWorkspace runs check once and again after every burst of unit file
// changes below ws.Root, until ctx is cancelled. Check failures are printed
// and do not stop the loop.
func watchWorkspace(ctx context.Context, out io.Writer, ws *workspace, check func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := addWatchRecursive(watcher, ws.Root); err != nil {
		return err
	}

	rerun := func() {
		if err := ws.refresh(); err != nil {
			fmt.Fprintln(out, color.RedString("error:"), err)
			return
		}
		if err := check(ctx); err != nil {
			fmt.Fprintln(out, color.RedString("error:"), err)
		}
		fmt.Fprintf(out, "%s watching %s for changes\n", color.CyanString("--"), ws.Root)
	}
	rerun()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, path)
					continue
				}
			}
			if !skeleton.IsUnitFile(path) && filepath.Base(path) != "semgraph.toml" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(watchDebounce)
			pending = true
		case <-timer.C:
			if pending {
				pending = false
				rerun()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
