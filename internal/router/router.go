package routes

import (
	"io/fs"
	"net/http"
	"path"

	_ "github.com/oggyb/wa-dispatch/internal/docs" // swagger docs
	"github.com/oggyb/wa-dispatch/internal/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerHandler "github.com/swaggo/http-swagger"
)

type AppDeps struct {
	Home     HomeHandler
	Dispatch DispatchHandler
	Session  SessionHandler

	// PublicDir is served under /public/.
	PublicDir string
}

type HomeHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type DispatchHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type SessionHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	ControlMonitor(w http.ResponseWriter, r *http.Request)
}

func Register(mux *http.ServeMux, d AppDeps) {
	mux.HandleFunc("GET /{$}", d.Home.Index)
	mux.HandleFunc("GET /health", d.Home.Health)

	mux.HandleFunc("POST /send", d.Dispatch.Send)
	mux.HandleFunc("GET /dispatches", d.Dispatch.List)

	mux.HandleFunc("GET /session", d.Session.Status)
	mux.HandleFunc("POST /session/monitor", d.Session.ControlMonitor)

	// Uploaded files
	if d.PublicDir != "" {
		mux.Handle("GET /public/", http.StripPrefix("/public/", http.FileServer(noListingFS{http.Dir(d.PublicDir)})))
	}

	mux.Handle("GET /metrics", promhttp.Handler())

	//Swagger
	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Fallback handler for undefined routes (404)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}

// noListingFS serves files but refuses directories that have no index.html,
// so upload directories cannot be browsed.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !st.IsDir() {
		return f, nil
	}

	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	_ = index.Close()
	return f, nil
}
