package graph

import (
	"log/slog"
	"net/http"

	"docsgraph/internal/httputil"
	"docsgraph/internal/loader"

	"github.com/graph-gophers/graphql-go"
)

// Handler serves GraphQL over HTTP POST.
type Handler struct {
	schema  *graphql.Schema
	loaders *loader.Factory
	logger  *slog.Logger
}

// NewHandler creates a handler that runs each request with fresh loaders.
func NewHandler(schema *graphql.Schema, loaders *loader.Factory, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, loaders: loaders, logger: logger}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httputil.RespondErrorWithExtras(w, http.StatusMethodNotAllowed, "GraphQL requests must use POST",
			map[string]interface{}{"allowed_methods": []string{http.MethodPost}})
		return
	}

	var req request
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := loader.WithLoaders(r.Context(), h.loaders.New())
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) > 0 {
		h.logger.Debug("graphql errors", "operation", req.OperationName, "errors", len(resp.Errors))
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
