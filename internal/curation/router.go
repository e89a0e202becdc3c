// Package curation implements the VIP gallery curation API: a static route
// table dispatching restore, finalize, delete-items and trash commands scoped
// to a gallery (and optionally a folder). Commands are validated and answered
// with an acknowledgment of their effect; persistence is left to an optional
// Journal.
package curation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gallery-delivery-api/pkg/lambda"

	"github.com/sirupsen/logrus"
)

type operation func(a *API, ctx context.Context, req *lambda.Request) (interface{}, error)

type routeKey struct {
	method   string
	resource string
}

// preflight marks an OPTIONS route
var preflight operation

// Route templates served by the API
const (
	ResourceHealth      = "/health"
	ResourceRestore     = "/vip/galleries/{galleryId}/restore"
	ResourceFinalize    = "/vip/galleries/{galleryId}/finalize"
	ResourceFolderItems = "/vip/galleries/{galleryId}/folders/{folderId}/items"
	ResourceTrash       = "/vip/galleries/{galleryId}/trash"
)

// routes is built once at package initialisation and never written again
var routes = map[routeKey]operation{
	{http.MethodGet, ResourceHealth}:     (*API).health,
	{http.MethodOptions, ResourceHealth}: preflight,

	{http.MethodPost, ResourceRestore}:    (*API).restore,
	{http.MethodOptions, ResourceRestore}: preflight,

	{http.MethodPost, ResourceFinalize}:    (*API).finalize,
	{http.MethodOptions, ResourceFinalize}: preflight,

	{http.MethodDelete, ResourceFolderItems}:  (*API).deleteItems,
	{http.MethodOptions, ResourceFolderItems}: preflight,

	{http.MethodPost, ResourceTrash}:    (*API).trash,
	{http.MethodOptions, ResourceTrash}: preflight,
}

// Route is a (method, template) pair served by the API
type Route struct {
	Method   string
	Resource string
}

// Routes lists every registered route, preflights included
func Routes() []Route {
	out := make([]Route, 0, len(routes))
	for k := range routes {
		out = append(out, Route{Method: k.method, Resource: k.resource})
	}
	return out
}

// Clock returns the current time
type Clock func() time.Time

// API dispatches curation commands
type API struct {
	clock   Clock
	journal Journal
	logger  *logrus.Logger
}

// Option configures an API
type Option func(*API)

// WithClock overrides the wall clock
func WithClock(clock Clock) Option {
	return func(a *API) { a.clock = clock }
}

// WithJournal records every computed effect
func WithJournal(journal Journal) Option {
	return func(a *API) { a.journal = journal }
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// NewAPI creates a curation API
func NewAPI(opts ...Option) *API {
	a := &API{
		clock:   time.Now,
		journal: NopJournal{},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle resolves the request against the route table and runs the matching
// operation. It always returns a response.
func (a *API) Handle(ctx context.Context, req *lambda.Request) (resp *lambda.Response) {
	method := strings.ToUpper(req.Method)

	op, found := routes[routeKey{method: method, resource: req.Resource}]
	if !found {
		if method == http.MethodOptions {
			return lambda.Preflight()
		}
		nf := routeNotFound(req.Resource, req.Method)
		return lambda.JSON(nf.StatusCode(), nf.Payload())
	}
	if op == nil {
		return lambda.Preflight()
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			a.logger.WithFields(logrus.Fields{
				"resource": req.Resource,
				"method":   method,
				"panic":    err.Error(),
			}).Error("Curation handler panicked")
			ie := internalError(err, req.Resource, method)
			resp = lambda.JSON(ie.StatusCode(), ie.Payload())
		}
	}()

	result, err := op(a, ctx, req)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			a.logger.WithFields(logrus.Fields{
				"resource": req.Resource,
				"method":   method,
				"kind":     cerr.Kind.String(),
			}).Warn(cerr.Message)
			return lambda.JSON(cerr.StatusCode(), cerr.Payload())
		}

		a.logger.WithFields(logrus.Fields{
			"resource": req.Resource,
			"method":   method,
			"error":    err.Error(),
		}).Error("Curation handler failed")
		ie := internalError(err, req.Resource, method)
		return lambda.JSON(ie.StatusCode(), ie.Payload())
	}

	return lambda.JSON(http.StatusOK, result)
}

func (a *API) now() int64 {
	return a.clock().Unix()
}

func (a *API) record(ctx context.Context, effect Effect) error {
	if err := a.journal.Record(ctx, effect); err != nil {
		return fmt.Errorf("failed to record %s effect: %w", effect.Operation, err)
	}

	a.logger.WithFields(logrus.Fields{
		"route":      string(effect.Operation),
		"gallery_id": effect.GalleryID,
		"count":      len(effect.AssetIDs),
	}).Info("Curation effect computed")
	return nil
}
