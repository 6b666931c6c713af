// Package rest mounts a generated entity service on a gin router.
//
// Every entity gets the routes react-admin style clients expect:
//
//	GET    /authors           list, with filter, sort and range query parameters
//	GET    /authors/:id       get
//	POST   /authors           create
//	POST   /authors/batch     create many, in one transaction
//	PUT    /authors/:id       update
//	PATCH  /authors/:id       update
//	DELETE /authors/:id       delete
//	DELETE /authors           delete many; the body is a JSON array of ids
//
// List responses carry the Content-Range and X-Total-Count headers.
//
// Generated services satisfy Resource. Type arguments cannot be inferred
// from a concrete service, so they are spelled out:
//
//	rest.Register[int64, AuthorResponse, AuthorList, AuthorCreate, AuthorUpdate](r, db, AuthorService{})
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect/sql"
	"github.com/syssam/crudgen/filter"
	"github.com/syssam/crudgen/internal/logger"
)

// Resource is the service of one entity with key K, response model R, list
// model L, create model C and update model U.
type Resource[K comparable, R, L, C, U any] interface {
	Meta() *crudgen.EntityMeta
	Get(ctx context.Context, db sql.Querier, id K) (*R, error)
	List(ctx context.Context, db sql.Querier, q *filter.Query) (*crudgen.Page[L], error)
	Create(ctx context.Context, db sql.Querier, in *C) (*R, error)
	CreateMany(ctx context.Context, db sql.Querier, in []C) ([]R, error)
	Update(ctx context.Context, db sql.Querier, id K, in *U) (*R, error)
	Delete(ctx context.Context, db sql.Querier, id K) (K, error)
	DeleteMany(ctx context.Context, db sql.Querier, ids []K) ([]K, error)
}

type (
	// Option configures Register.
	Option func(*options)

	options struct {
		path string
		log  logger.Logger
	}
)

// WithLogger logs failed requests answered with a 5xx status.
func WithLogger(l *charmlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = logger.Wrap(l)
		}
	}
}

// WithPath mounts the routes under path instead of "/<plural>".
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// handler serves one resource.
type handler[K comparable, R, L, C, U any] struct {
	db  sql.Querier
	res Resource[K, R, L, C, U]
	log logger.Logger
}

// Register mounts the routes of res on router. Statements run on db.
func Register[K comparable, R, L, C, U any](router gin.IRouter, db sql.Querier, res Resource[K, R, L, C, U], opts ...Option) {
	o := &options{path: "/" + res.Meta().Plural, log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	h := &handler[K, R, L, C, U]{db: db, res: res, log: o.log.With("resource", res.Meta().Plural)}
	g := router.Group(o.path)
	g.GET("", h.list())
	g.GET("/:id", h.get())
	g.POST("", h.create())
	g.POST("/batch", h.createMany())
	g.PUT("/:id", h.update())
	g.PATCH("/:id", h.update())
	g.DELETE("/:id", h.delete())
	g.DELETE("", h.deleteMany())
}

// GET /<plural>
func (h *handler[K, R, L, C, U]) list() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := filter.Parse(h.res.Meta(), c.Request.URL.Query())
		if err != nil {
			h.fail(c, err)
			return
		}
		page, err := h.res.List(c.Request.Context(), h.db, q)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Header("Content-Range", page.Range.String())
		c.Header("X-Total-Count", strconv.Itoa(page.Total))
		c.JSON(http.StatusOK, page.Items)
	}
}

// GET /<plural>/:id
func (h *handler[K, R, L, C, U]) get() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		v, err := h.res.Get(c.Request.Context(), h.db, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// POST /<plural>
func (h *handler[K, R, L, C, U]) create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in C
		if !h.bind(c, &in) {
			return
		}
		v, err := h.res.Create(c.Request.Context(), h.db, &in)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

// POST /<plural>/batch
func (h *handler[K, R, L, C, U]) createMany() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in []C
		if !h.bind(c, &in) {
			return
		}
		vs, err := h.res.CreateMany(c.Request.Context(), h.db, in)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, vs)
	}
}

// PUT /<plural>/:id
// PATCH /<plural>/:id
func (h *handler[K, R, L, C, U]) update() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		var in U
		if !h.bind(c, &in) {
			return
		}
		v, err := h.res.Update(c.Request.Context(), h.db, id, &in)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// DELETE /<plural>/:id
func (h *handler[K, R, L, C, U]) delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		deleted, err := h.res.Delete(c.Request.Context(), h.db, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": deleted})
	}
}

// DELETE /<plural>
func (h *handler[K, R, L, C, U]) deleteMany() gin.HandlerFunc {
	return func(c *gin.Context) {
		var ids []K
		if !h.bind(c, &ids) {
			return
		}
		deleted, err := h.res.DeleteMany(c.Request.Context(), h.db, ids)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}

// id decodes the :id path parameter. Numeric keys are read as they are,
// string and text keys (uuid) from the quoted parameter.
func (h *handler[K, R, L, C, U]) id(c *gin.Context) (K, bool) {
	id, err := ParseID[K](c.Param("id"))
	if err != nil {
		h.fail(c, crudgen.NewValidationError("id", err))
		return id, false
	}
	return id, true
}

// ParseID decodes a path parameter into a key of type K.
func ParseID[K any](s string) (K, error) {
	var id K
	if err := json.Unmarshal([]byte(s), &id); err == nil {
		return id, nil
	}
	if err := json.Unmarshal([]byte(strconv.Quote(s)), &id); err != nil {
		return id, err
	}
	return id, nil
}

func (h *handler[K, R, L, C, U]) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// fail answers with the status err maps to.
func (h *handler[K, R, L, C, U]) fail(c *gin.Context, err error) {
	status := Status(err)
	body := gin.H{"error": err.Error()}
	var verr *crudgen.ValidationError
	if errors.As(err, &verr) && verr.Name != "" {
		body["field"] = verr.Name
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}

// Status maps a service error to an HTTP status code.
func Status(err error) int {
	switch {
	case crudgen.IsNotFound(err):
		return http.StatusNotFound
	case crudgen.IsValidationError(err):
		return http.StatusBadRequest
	case sql.IsConstraintError(err):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}
