package graph

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docsgraph/internal/domain"
	"docsgraph/internal/domain/models"
	docmodels "docsgraph/internal/domain/models/docsystem"
	"docsgraph/internal/domain/services"
	docsysSvc "docsgraph/internal/domain/services/docsystem"

	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

//go:embed federation.graphql
var federationSDL string

// SDL returns the subgraph schema as published through _service.
func SDL() string {
	return schemaSDL
}

// Outcome labels recorded for operations that end without a result msg.
const (
	outcomeError  = "error"
	outcomeDenied = "denied"
)

// OperationRecorder counts root field outcomes.
type OperationRecorder interface {
	ObserveOperation(field, msg string)
}

// Services groups the services behind the root fields.
type Services struct {
	Documents  docsysSvc.DocumentService
	Folders    docsysSvc.FolderService
	Repository docsysSvc.RepositoryService
}

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	documents  docsysSvc.DocumentService
	folders    docsysSvc.FolderService
	repository docsysSvc.RepositoryService
	authorizer services.OperationAuthorizer
	recorder   OperationRecorder
	logger     *slog.Logger
}

// NewResolver creates the root resolver. recorder may be nil.
func NewResolver(svc Services, authorizer services.OperationAuthorizer, recorder OperationRecorder, logger *slog.Logger) *Resolver {
	return &Resolver{
		documents:  svc.Documents,
		folders:    svc.Folders,
		repository: svc.Repository,
		authorizer: authorizer,
		recorder:   recorder,
		logger:     logger,
	}
}

// NewSchema parses the embedded schema against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL+"\n"+federationSDL, r,
		graphql.MaxDepth(12),
		graphql.Logger(panicLogger{logger: r.logger}),
	)
}

// authorize checks the caller before any work on field.
func (r *Resolver) authorize(ctx context.Context, field string) (*models.User, error) {
	user, err := r.authorizer.Authorize(ctx, field)
	if err != nil {
		r.observe(field, outcomeDenied)
		r.logger.Debug("operation denied", "field", field, "error", err)
		return nil, wrapError(err)
	}
	return user, nil
}

func (r *Resolver) observe(field, msg string) {
	if r.recorder != nil {
		r.recorder.ObserveOperation(field, msg)
	}
}

// fail records and converts a service error into a GraphQL error.
func (r *Resolver) fail(field string, err error) error {
	r.observe(field, outcomeError)
	if !errors.Is(err, domain.ErrValidation) {
		r.logger.Error("operation failed", "field", field, "error", err)
	}
	return wrapError(err)
}

// resolverError carries an error code and HTTP-equivalent status into the
// GraphQL error extensions.
type resolverError struct {
	err    error
	code   string
	status int
}

func (e *resolverError) Error() string { return e.err.Error() }
func (e *resolverError) Unwrap() error { return e.err }

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code, "status": e.status}
}

func wrapError(err error) error {
	status := domain.StatusCode(err)
	code := "INTERNAL_SERVER_ERROR"
	switch status {
	case http.StatusUnauthorized:
		code = "UNAUTHENTICATED"
	case http.StatusForbidden:
		code = "FORBIDDEN"
	case http.StatusBadRequest:
		code = "BAD_USER_INPUT"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusConflict:
		code = "CONFLICT"
	}
	return &resolverError{err: err, code: code, status: status}
}

// panicLogger reports resolver panics through slog.
type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.ErrorContext(ctx, "graphql resolver panic", "panic", value)
}

func parseID(id graphql.ID) (uuid.UUID, error) {
	parsed, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, id)
	}
	return parsed, nil
}

func parseOptionalID(id *graphql.ID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	parsed, err := parseID(*id)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func toID(id uuid.UUID) graphql.ID {
	return graphql.ID(id.String())
}

func toOptionalID(id *uuid.UUID) *graphql.ID {
	if id == nil {
		return nil
	}
	v := toID(*id)
	return &v
}

func toTime(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// userID returns the caller's id when it is a UUID.
func userID(user *models.User) *uuid.UUID {
	if user == nil {
		return nil
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil
	}
	return &id
}

// page converts skip/limit arguments to page options.
func page(skip, limit *int32) docmodels.PageOptions {
	var p docmodels.PageOptions
	if skip != nil {
		p.Offset = int(*skip)
	}
	if limit != nil {
		p.Limit = int(*limit)
	}
	p.ApplyDefaults()
	return p
}
