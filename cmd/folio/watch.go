package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch re-indexes the manuscript whenever it is written and prints a new
// report. It returns when ctx is done or the watcher fails.
//
// The parent directory is watched so that editors which replace the file
// on save are still seen.
func watch(ctx context.Context, s *session, opts options, w io.Writer) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	target, err := filepath.Abs(opts.Path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("watching manuscript", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isManuscriptWrite(ev, target) {
				continue
			}
			text, err := os.ReadFile(target)
			if err != nil {
				s.logger.Warn("manuscript unreadable", zap.Error(err))
				continue
			}
			s.load(string(text))
			if err := s.report(opts).write(w, opts.JSON); err != nil {
				return err
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// isManuscriptWrite reports whether ev changed the contents of target.
func isManuscriptWrite(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
