package dspace

import (
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Result is the raw outcome of a DSpace call: the HTTP status and body.
type Result struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// String returns the body as text.
func (r *Result) String() string {
	return string(r.Body)
}

// UUID returns the "uuid" field of a JSON object body, or nil.
func (r *Result) UUID() *uuid.UUID {
	return parseUUID(r.Get("uuid"))
}

// Get reads a gjson path from a JSON body.
func (r *Result) Get(path string) gjson.Result {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// Embedded returns the elements of _embedded.<key> in a HAL collection.
func (r *Result) Embedded(key string) []gjson.Result {
	return r.Get("_embedded." + key).Array()
}

// Total returns page.totalElements of a HAL collection.
func (r *Result) Total() int64 {
	return r.Get("page.totalElements").Int()
}

// Object is a DSpace object reduced to its id and name.
type Object struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// Objects lists the uuid and name of every element of _embedded.<key>.
// Elements without a valid uuid are skipped.
func (r *Result) Objects(key string) []Object {
	elems := r.Embedded(key)
	objects := make([]Object, 0, len(elems))
	for _, e := range elems {
		id := parseUUID(e.Get("uuid"))
		if id == nil {
			continue
		}
		objects = append(objects, Object{UUID: *id, Name: e.Get("name").String()})
	}
	return objects
}

func parseUUID(v gjson.Result) *uuid.UUID {
	if v.Type != gjson.String {
		return nil
	}
	id, err := uuid.Parse(v.String())
	if err != nil {
		return nil
	}
	return &id
}
