package cli

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

// serveCommand creates the serve command: a small HTTP server over the
// output directory so generated badge sheets can be checked in a browser
// before printing.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated badge sheets for browser preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("output directory %s: %w", dir, err)
			}

			router := chi.NewRouter()
			router.Use(middleware.Recoverer)
			router.Get("/", indexHandler(dir))
			router.Get("/files/{name}", fileHandler(dir))

			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			// Shut down when the command context is cancelled (Ctrl-C).
			go func() {
				<-cmd.Context().Done()
				_ = server.Close()
			}()

			c.Logger.Info("serving badge sheets", "addr", addr, "dir", dir)
			printInfo("Preview at http://localhost%s/", addr)

			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory containing the generated PDFs")

	return cmd
}

// indexHandler lists the PDFs in dir as links.
func indexHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<!DOCTYPE html><title>badgeforge preview</title><h1>Badge sheets</h1><ul>")
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".pdf") {
				continue
			}
			name := html.EscapeString(e.Name())
			fmt.Fprintf(w, `<li><a href="/files/%s">%s</a></li>`, name, name)
		}
		fmt.Fprint(w, "</ul>")
	}
}

// fileHandler serves one PDF from dir. Path traversal is rejected by
// resolving the name against the directory.
func fileHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name != filepath.Base(name) || !strings.HasSuffix(name, ".pdf") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, name))
	}
}
