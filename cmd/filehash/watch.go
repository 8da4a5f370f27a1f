package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/gur-shatz/filehash/internal/api"
	"github.com/gur-shatz/filehash/internal/log"
	"github.com/gur-shatz/filehash/internal/sumfile"
	"github.com/gur-shatz/filehash/internal/watcher"
)

func (this *app) runWatch() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println()
		log.Status("Shutting down...")
		cancel()
	}()

	onChange := func(snap watcher.Snapshot, changes sumfile.ChangeSet) {
		if this.notifier != nil {
			this.notifier.Changed(changes, snap.Digest)
			return
		}
		log.Change(changes)
		fmt.Println(snap.Digest)
	}

	w := watcher.New(this.scanOptions(nil), this.settings.Watch.Poll, this.settings.Watch.Debounce, onChange, log.Default())
	if err := w.Init(); err != nil {
		return err
	}

	snap := w.Snapshot()
	if this.notifier != nil {
		this.notifier.Digest(snap.Algorithm, snap.Digest, snap.Files(), len(snap.Failed), 0)
	} else {
		if snap.Digest != "" {
			fmt.Println(snap.Digest)
		}
		log.Status("Watching %d files (%s)", snap.Files(), snap.Algorithm)
	}

	errCh := make(chan error, 1)
	if addr := this.settings.API.Addr; addr != "" {
		r := chi.NewRouter()
		r.Mount("/api", api.New(w).Routes())

		server := &http.Server{Addr: addr, Handler: r}
		go func() {
			log.Status("API server listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		defer server.Close()
	}

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case err := <-errCh:
		cancel()
		<-done
		return fmt.Errorf("api server: %w", err)
	}

	if this.notifier != nil {
		this.notifier.Stopping()
	}
	return nil
}
