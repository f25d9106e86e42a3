// Package web serves a generated site for local preview. With watching
// enabled it rebuilds on data or template changes and tells open pages to
// reload over a websocket.
package web

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/vulgata/internal/logging"
	"github.com/FocuswithJustin/vulgata/internal/server"
	"github.com/FocuswithJustin/vulgata/internal/site"
)

// ReloadPath is the websocket endpoint used by injected pages.
const ReloadPath = "/livereload"

const reloadScript = `<script>(function(){` +
	`var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"` + ReloadPath + `");` +
	`ws.onmessage=function(e){if(e.data==="` + ReloadMessage + `"){location.reload();}};` +
	`})();</script>`

// Options configures the preview server.
type Options struct {
	Site site.Options
	Addr string
	// Watch rebuilds on changes and injects the reload script into pages.
	Watch bool
}

// Server serves the output directory of a site build.
type Server struct {
	opts Options
	hub  *Hub

	mu   sync.Mutex
	last *site.Result
}

// New creates a preview server. Nothing is built until Rebuild or
// ListenAndServe is called.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8000"
	}
	return &Server{opts: opts, hub: NewHub()}
}

// Hub returns the live-reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Rebuild regenerates the site and, on success, notifies connected pages.
// Builds never overlap.
func (s *Server) Rebuild(ctx context.Context) (*site.Result, error) {
	return s.build(ctx, s.opts.Watch)
}

func (s *Server) build(ctx context.Context, notify bool) (*site.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := site.Build(ctx, s.opts.Site)
	if err != nil {
		logging.ErrorContext(ctx, "rebuild failed", "error", err)
		return nil, err
	}
	s.last = res
	logging.InfoContext(ctx, "rebuilt site", "books", len(res.Books), "pages", res.Pages)
	if notify {
		s.hub.Reload()
	}
	return res, nil
}

// Last returns the result of the most recent successful build.
func (s *Server) Last() *site.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Handler returns the HTTP handler: the reload endpoint plus the output
// directory behind the preview middleware.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.opts.Site.OutDir))
	var pages http.Handler = files
	if s.opts.Watch {
		pages = s.injectReload(files)
	}

	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.hub)
	mux.Handle("/", server.Chain(pages,
		server.NoCacheMiddleware,
		func(h http.Handler) http.Handler {
			return server.SecurityHeadersWithCSP(server.PreviewCSPConfig(), h)
		},
		server.TimingMiddleware,
	))

	return server.Chain(mux,
		logging.RequestIDMiddleware,
		logging.LoggingMiddleware,
	)
}

// injectReload serves HTML pages with the reload script added before the
// closing body tag. Everything else falls through to next.
func (s *Server) injectReload(next http.Handler) http.Handler {
	root := http.Dir(s.opts.Site.OutDir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if r.Method != http.MethodGet || !strings.HasSuffix(name, ".html") {
			next.ServeHTTP(w, r)
			return
		}

		f, err := root.Open(name)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(InjectReloadScript(data))
	})
}

// InjectReloadScript inserts the reload script before the last </body> tag,
// or appends it when the page has none.
func InjectReloadScript(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append([]byte{}, page...), reloadScript...)
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:i]...)
	out = append(out, reloadScript...)
	out = append(out, page[i:]...)
	return out
}

// ListenAndServe builds the site, then serves it until ctx is cancelled.
// When watching, the data directory and template are watched for changes.
// The ready callback, if set, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, ready func(addr string)) error {
	if _, err := s.build(ctx, false); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	if s.opts.Watch {
		w := NewWatcher(s.opts.Site.DataDir, s.opts.Site.Template, func(ctx context.Context) {
			s.Rebuild(ctx)
		})
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	logging.InfoContext(ctx, "serving site", "addr", addr, "dir", server.AbsPath(s.opts.Site.OutDir), "watch", s.opts.Watch)
	if ready != nil {
		ready(addr)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
