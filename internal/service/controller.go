package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexwatever/wept/internal/ctxkey"
	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// controller holds what every entity controller shares.
type controller struct {
	exec            outbound.QueryExecutor
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// ControllerOption configures an entity controller.
type ControllerOption func(*controller)

// WithPageSize sets the page size used when callers pass none, and the cap
// applied to requested sizes.
func WithPageSize(def, maxSize int) ControllerOption {
	return func(c *controller) {
		c.defaultPageSize = def
		c.maxPageSize = maxSize
	}
}

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newController(exec outbound.QueryExecutor, opts []ControllerOption) controller {
	c := controller{
		exec:            exec,
		defaultPageSize: pagination.DefaultPageSize,
		maxPageSize:     pagination.MaxPageSize,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// query runs op and converts failures into an *apperror.Error that keeps
// the failure's kind.
func (c controller) query(ctx context.Context, op outbound.Operation, vars map[string]any, out any, entity, detail string) error {
	if err := c.exec.ExecuteQuery(ctx, op, vars, out); err != nil {
		loggerFromContext(ctx, c.logger).Debug("query failed",
			"operation", op.Name,
			"detail", detail,
			"kind", apperror.Classify(err),
		)
		return apperror.Wrap(err,
			fmt.Sprintf("Failed to load %s", entity),
			fmt.Sprintf("%s (%s): %v", op.Name, detail, err),
		)
	}
	return nil
}

// listVars builds the variables of a cursor-paged list query. An empty
// cursor is omitted so the backend starts from the first page.
func (c controller) listVars(pageSize int, after string) map[string]any {
	vars := map[string]any{
		"first": pagination.ClampPageSize(pageSize, c.defaultPageSize, c.maxPageSize),
	}
	if after != "" {
		vars["after"] = after
	}
	return vars
}

func notFound(entity, detail string) *apperror.Error {
	return apperror.New(apperror.KindNotFound,
		fmt.Sprintf("The requested %s could not be found", entity),
		detail,
		nil,
	)
}

// loggerFromContext returns the request-scoped logger set by the HTTP
// middleware, or fallback when there is none.
func loggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}
