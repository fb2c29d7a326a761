// Package inspector exposes a read-only JSON view of a container tree.
//
//	GET  {prefix}/tree                 the whole tree from the root
//	GET  {prefix}/containers/{path...} one subtree, e.g. /containers/mail/smtp
//	GET  {prefix}/resolve?name=mailer  alias resolution without instantiating
//	POST {prefix}/build                dry-run of a JSON definition
//
// The build endpoint sketches the posted definition into a scratch container
// with stand-in entries; the served tree is never touched.
package inspector

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/container/builder"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
	"github.com/km-arc/go-ioc/framework/validation"
)

// MaxDefinitionBytes caps the body accepted by Build.
const MaxDefinitionBytes = 1 << 20

// Handler serves the inspector endpoints for one container tree.
type Handler struct {
	root   *container.Container
	logger *zap.Logger
}

// New creates a Handler rooted at c.
func New(c *container.Container) *Handler {
	return &Handler{root: c.Root(), logger: c.Logger()}
}

// Mount registers the inspector routes under prefix.
//
//	inspector.Mount(router, "/_ioc", app.Container())
func Mount(r *routing.Router, prefix string, c *container.Container) {
	h := New(c)
	r.Prefix(prefix, func(r *routing.Router) {
		r.Middleware(middleware.NoCache)
		r.Get("/tree", h.Tree)
		r.Get("/containers/*", h.Container)
		r.Get("/resolve", h.Resolve)

		r.Group(func(r *routing.Router) {
			r.Middleware(middleware.AllowContentType("application/json"))
			r.Post("/build", h.Build)
		})
	})
}

// Tree describes the whole tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	gohttp.NewResponse(w).Success(h.root.Describe())
}

// Container describes the subtree at the wildcard path.
func (h *Handler) Container(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	c, err := h.root.From("/" + req.RouteParam("*"))
	if err != nil {
		h.fail(res, err)
		return
	}
	res.Success(c.Describe())
}

// Resolution is the body returned by Resolve.
type Resolution struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Resolved  string `json:"resolved"`
	Has       bool   `json:"has"`
}

// Resolve follows the alias chain of ?name= inside ?namespace= (default
// root) and reports where it ends.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	v := validation.Make(req.QueryAll(), validation.Rules{
		"name":      "required|max:255",
		"namespace": "sometimes|path",
	})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	c, err := h.root.From("/" + req.Query("namespace"))
	if err != nil {
		h.fail(res, err)
		return
	}
	name := req.Query("name")
	resolved, err := c.Extended(name)
	if err != nil {
		h.fail(res, err)
		return
	}
	res.Success(Resolution{
		Namespace: c.Path(),
		Name:      name,
		Resolved:  resolved,
		Has:       c.Has(name),
	})
}

// BuildFailure is the body returned when a posted definition is rejected.
type BuildFailure struct {
	Message  string   `json:"message"`
	Problems []string `json:"problems,omitempty"`
}

// Build decodes a JSON definition, validates it and sketches it into a
// scratch container, answering with that container's description.
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxDefinitionBytes)
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	if !req.IsJSON() {
		res.Error(http.StatusUnsupportedMediaType, "definition must be posted as application/json")
		return
	}
	var def builder.Definition
	if err := req.Bind(&def); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			res.Error(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	var invalid *builder.ValidationError
	if errors.As(builder.Validate(&def), &invalid) {
		res.JSON(http.StatusUnprocessableEntity, BuildFailure{Message: "definition is invalid", Problems: invalid.Problems})
		return
	}
	c, err := builder.Sketch(&def)
	if err != nil {
		h.logger.Debug("definition rejected",
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
			zap.String("client_request_id", req.Header(middleware.RequestIDHeader)),
			zap.Error(err))
		res.JSON(http.StatusUnprocessableEntity, BuildFailure{Message: err.Error()})
		return
	}
	res.Success(c.Describe())
}

func (h *Handler) fail(res *gohttp.Response, err error) {
	switch {
	case errors.Is(err, container.ErrNamespaceNotFound):
		res.NotFound(err.Error())
	case errors.Is(err, container.ErrAliasCycle):
		res.Error(http.StatusConflict, err.Error())
	case errors.Is(err, container.ErrInvalidName):
		res.Error(http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("inspector request failed", zap.Error(err))
		res.ServerError()
	}
}
