package dspacetest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func (s *Server) route(w http.ResponseWriter, req Request) {
	parts := strings.Split(strings.Trim(req.Path, "/"), "/")
	query, _ := url.ParseQuery(req.Query)

	switch {
	case match(parts, "core", "items") && req.Method == http.MethodPost:
		s.createItem(w, req, query)
	case match(parts, "core", "items", "*") && req.Method == http.MethodGet:
		s.withItem(w, parts[2], func(item *Item) { writeJSON(w, http.StatusOK, itemJSON(item)) })
	case match(parts, "core", "items", "*") && req.Method == http.MethodPatch:
		s.withItem(w, parts[2], func(item *Item) { s.patchItem(w, item, req.Body) })
	case match(parts, "core", "items", "*", "bundles") && req.Method == http.MethodPost:
		s.withItem(w, parts[2], func(item *Item) { s.createBundle(w, item, req.Body) })
	case match(parts, "core", "items", "*", "bundles") && req.Method == http.MethodGet:
		s.withItem(w, parts[2], func(item *Item) { s.listBundles(w, item) })
	case match(parts, "core", "bundles", "*", "bitstreams") && req.Method == http.MethodGet:
		s.withBundle(w, parts[2], func(b *bundle) { s.listBitstreams(w, b) })
	case match(parts, "core", "bundles", "*", "bitstreams") && req.Method == http.MethodPost:
		s.withBundle(w, parts[2], func(b *bundle) { s.upload(w, b, req) })
	case match(parts, "core", "bitstreams", "*", "content") && req.Method == http.MethodGet:
		s.download(w, parts[2])
	case match(parts, "core", "communities") && req.Method == http.MethodPost:
		s.createContainer(w, req.Body, "", &s.communities)
	case match(parts, "core", "collections") && req.Method == http.MethodPost:
		s.createContainer(w, req.Body, query.Get("parent"), &s.collections)
	case match(parts, "core", "communities") && req.Method == http.MethodGet:
		s.listContainers(w, "communities", query)
	case match(parts, "core", "collections") && req.Method == http.MethodGet:
		s.listContainers(w, "collections", query)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such endpoint"})
	}
}

func match(parts []string, pattern ...string) bool {
	if len(parts) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != parts[i] {
			return false
		}
	}
	return true
}

type itemRequest struct {
	Name     string             `json:"name"`
	Metadata map[string][]Value `json:"metadata"`
}

func (s *Server) createItem(w http.ResponseWriter, req Request, query url.Values) {
	if query.Get("owningCollection") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "owningCollection is required"})
		return
	}
	var body itemRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": err.Error()})
		return
	}
	item := &Item{
		UUID:       uuid.New(),
		Name:       body.Name,
		Collection: query.Get("owningCollection"),
		Metadata:   body.Metadata,
	}
	if item.Metadata == nil {
		item.Metadata = map[string][]Value{}
	}
	s.mu.Lock()
	s.items[item.UUID] = item
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, itemJSON(item))
}

func (s *Server) withItem(w http.ResponseWriter, rawID string, fn func(*Item)) {
	id, err := uuid.Parse(rawID)
	s.mu.Lock()
	item, ok := s.items[id]
	s.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "item not found"})
		return
	}
	fn(item)
}

func (s *Server) withBundle(w http.ResponseWriter, rawID string, fn func(*bundle)) {
	id, err := uuid.Parse(rawID)
	s.mu.Lock()
	b, ok := s.bundles[id]
	s.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "bundle not found"})
		return
	}
	fn(b)
}

type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) patchItem(w http.ResponseWriter, item *Item, body []byte) {
	var ops []patchOp
	if err := json.Unmarshal(body, &ops); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		if !applyPatch(item, op) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "cannot apply " + op.Op + " " + op.Path})
			return
		}
	}
	writeJSON(w, http.StatusOK, itemJSON(item))
}

// applyPatch supports the metadata and withdrawn paths DSpace items expose.
// Caller holds the lock.
func applyPatch(item *Item, op patchOp) bool {
	if op.Path == "/withdrawn" && op.Op == "replace" {
		return json.Unmarshal(op.Value, &item.Withdrawn) == nil
	}
	field, index, hasIndex := metadataPath(op.Path)
	if field == "" {
		return false
	}
	switch op.Op {
	case "add":
		var values []Value
		if err := json.Unmarshal(op.Value, &values); err != nil {
			var single Value
			if err := json.Unmarshal(op.Value, &single); err != nil {
				return false
			}
			values = []Value{single}
		}
		item.Metadata[field] = append(item.Metadata[field], values...)
	case "replace":
		var v Value
		if err := json.Unmarshal(op.Value, &v); err != nil || !hasIndex || index >= len(item.Metadata[field]) {
			return false
		}
		item.Metadata[field][index] = v
		if field == "dc.title" && index == 0 {
			item.Name = v.Value
		}
	case "remove":
		if !hasIndex || index >= len(item.Metadata[field]) {
			return false
		}
		vs := item.Metadata[field]
		item.Metadata[field] = append(vs[:index], vs[index+1:]...)
	default:
		return false
	}
	return true
}

func metadataPath(path string) (field string, index int, hasIndex bool) {
	rest, ok := strings.CutPrefix(path, "/metadata/")
	if !ok {
		return "", 0, false
	}
	field, rawIndex, hasIndex := strings.Cut(rest, "/")
	if !hasIndex {
		return field, 0, false
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 {
		return "", 0, false
	}
	return field, index, true
}

func (s *Server) createBundle(w http.ResponseWriter, item *Item, body []byte) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "bundle name is required"})
		return
	}
	b := &bundle{UUID: uuid.New(), Name: req.Name}
	s.mu.Lock()
	s.bundles[b.UUID] = b
	item.Bundles = append(item.Bundles, b.UUID)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"uuid": b.UUID, "name": b.Name, "type": "bundle"})
}

func (s *Server) listBundles(w http.ResponseWriter, item *Item) {
	s.mu.Lock()
	list := make([]map[string]any, 0, len(item.Bundles))
	for _, id := range item.Bundles {
		list = append(list, map[string]any{"uuid": id, "name": s.bundles[id].Name, "type": "bundle"})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, collectionJSON("bundles", list, len(list)))
}

func (s *Server) listBitstreams(w http.ResponseWriter, b *bundle) {
	s.mu.Lock()
	list := make([]map[string]any, 0, len(b.Bitstreams))
	for _, id := range b.Bitstreams {
		bs := s.bitstreams[id]
		list = append(list, map[string]any{"uuid": bs.UUID, "name": bs.Name, "sizeBytes": len(bs.Content), "type": "bitstream"})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, collectionJSON("bitstreams", list, len(list)))
}

func (s *Server) upload(w http.ResponseWriter, b *bundle, req Request) {
	_, params, err := mime.ParseMediaType(req.ContentType)
	if err != nil || params["boundary"] == "" {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"message": "multipart body required"})
		return
	}
	form, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).ReadForm(10 << 20)
	if err != nil || len(form.File["file"]) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "file part required"})
		return
	}
	header := form.File["file"][0]
	f, err := header.Open()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": err.Error()})
		return
	}
	defer f.Close()
	content, _ := io.ReadAll(f)

	bs := &bitstream{UUID: uuid.New(), Name: header.Filename, Content: content}
	s.mu.Lock()
	s.bitstreams[bs.UUID] = bs
	b.Bitstreams = append(b.Bitstreams, bs.UUID)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"uuid": bs.UUID, "name": bs.Name, "sizeBytes": len(content), "type": "bitstream"})
}

func (s *Server) download(w http.ResponseWriter, rawID string) {
	id, _ := uuid.Parse(rawID)
	s.mu.Lock()
	bs, ok := s.bitstreams[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "bitstream not found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bs.Content)
}

func (s *Server) createContainer(w http.ResponseWriter, body []byte, parent string, into *[]object) {
	var req itemRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "name is required"})
		return
	}
	o := object{UUID: uuid.New(), Name: req.Name, Parent: parent}
	s.mu.Lock()
	*into = append(*into, o)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"uuid": o.UUID, "name": o.Name})
}

func (s *Server) listContainers(w http.ResponseWriter, key string, query url.Values) {
	page, _ := strconv.Atoi(query.Get("page"))
	size, err := strconv.Atoi(query.Get("size"))
	if err != nil || size <= 0 {
		size = 20
	}
	s.mu.Lock()
	all := s.communities
	if key == "collections" {
		all = s.collections
	}
	total := len(all)
	list := make([]map[string]any, 0, size)
	for i := page * size; i < total && i < (page+1)*size; i++ {
		list = append(list, map[string]any{"uuid": all[i].UUID, "name": all[i].Name})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, collectionJSON(key, list, total))
}

func itemJSON(item *Item) map[string]any {
	return map[string]any{
		"uuid":      item.UUID,
		"name":      item.Name,
		"withdrawn": item.Withdrawn,
		"metadata":  item.Metadata,
		"type":      "item",
	}
}

func collectionJSON(key string, list []map[string]any, total int) map[string]any {
	return map[string]any{
		"_embedded": map[string]any{key: list},
		"page":      map[string]any{"totalElements": total, "size": len(list)},
	}
}
