package http

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer executes the page templates. Pages come from the embedded set,
// overridden by any *.html in an optional directory.
type Renderer struct {
	mu        sync.RWMutex
	templates *template.Template
	dir       string
	printer   *message.Printer
	logger    *zap.Logger
}

func NewRenderer(dir string, logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		dir:     dir,
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"percent": r.Percent,
		"number":  r.Number,
	}
}

// Percent formats a probability like 0.82 as "82.0%".
func (r *Renderer) Percent(p float64) string {
	return r.printer.Sprintf("%.1f%%", p*100)
}

// Number formats a value with thousands grouping.
func (r *Renderer) Number(v float64) string {
	return r.printer.Sprintf("%v", v)
}

func (r *Renderer) reload() error {
	tmpl, err := template.New("pages").Funcs(r.funcs()).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse embedded templates: %w", err)
	}
	if r.dir != "" {
		matches, err := filepath.Glob(filepath.Join(r.dir, "*.html"))
		if err != nil {
			return fmt.Errorf("list templates in %s: %w", r.dir, err)
		}
		if len(matches) > 0 {
			if tmpl, err = tmpl.ParseFiles(matches...); err != nil {
				return fmt.Errorf("parse templates in %s: %w", r.dir, err)
			}
		}
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()
	return nil
}

// Render executes the named page into w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	r.mu.RLock()
	tmpl := r.templates
	r.mu.RUnlock()
	return tmpl.ExecuteTemplate(w, name, data)
}

// Watch re-parses templates whenever a file in the override directory
// changes, until ctx is done. A failed parse keeps the previous templates.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return fmt.Errorf("no template directory to watch")
	}
	if _, err := os.Stat(r.dir); err != nil {
		return fmt.Errorf("watch templates: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".html" {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := r.reload(); err != nil {
					r.logger.Warn("template reload failed", zap.String("file", event.Name), zap.Error(err))
					continue
				}
				r.logger.Info("templates reloaded", zap.String("file", event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("template watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
