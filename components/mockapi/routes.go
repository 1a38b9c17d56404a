package mockapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Endpoints are the mounted paths of every route.
type Endpoints struct {
	List     string
	Children string
	Add      string
	Remove   string
	Upload   string
}

// RegisterRoutes mounts every endpoint under basePath.
func (a *API) RegisterRoutes(mux Mux, basePath string) (Endpoints, error) {
	if mux == nil {
		return Endpoints{}, fmt.Errorf("mockapi: missing mux")
	}
	routes := a.opts.Routes
	endpoints := Endpoints{
		List:     mountPath(basePath, routes.List),
		Children: mountPath(basePath, routes.Children),
		Add:      mountPath(basePath, routes.Add),
		Remove:   mountPath(basePath, routes.Remove),
		Upload:   mountPath(basePath, routes.Upload),
	}
	mux.Handle(endpoints.List, a.ListHandler())
	mux.Handle(endpoints.Children, a.ChildrenHandler())
	mux.Handle(endpoints.Add, a.AddHandler())
	mux.Handle(endpoints.Remove, a.RemoveHandler())
	mux.Handle(endpoints.Upload, a.UploadHandler())
	return endpoints, nil
}

// Handler returns a mux serving every endpoint under basePath.
func (a *API) Handler(basePath string) http.Handler {
	mux := http.NewServeMux()
	_, _ = a.RegisterRoutes(mux, basePath)
	return mux
}

// Prefix joins a server origin with the mounted endpoints.
func (e Endpoints) Prefix(origin string) Endpoints {
	origin = strings.TrimRight(origin, "/")
	return Endpoints{
		List:     origin + e.List,
		Children: origin + e.Children,
		Add:      origin + e.Add,
		Remove:   origin + e.Remove,
		Upload:   origin + e.Upload,
	}
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
