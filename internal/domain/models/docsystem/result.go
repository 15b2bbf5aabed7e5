package docsystem

import "github.com/google/uuid"

// Result messages. Every mutation and DSpace query reports one of these.
const (
	MsgOk                  = "Ok"
	MsgFail                = "Fail"
	MsgNoContent           = "No Content"
	MsgBadRequest          = "Bad Request"
	MsgUnauthorized        = "Unauthorized"
	MsgForbidden           = "Forbidden"
	MsgNotFound            = "Not Found"
	MsgUnprocessableEntity = "Unprocessable Entity"
)

// DocumentResult is the outcome of a document operation.
type DocumentResult struct {
	ID             *uuid.UUID
	Msg            string
	DSpaceResponse *string // raw DSpace body when a call was made
	Document       *Document
}

// FolderResult is the outcome of a folder mutation.
type FolderResult struct {
	ID     *uuid.UUID
	Msg    string
	Folder *Folder
}

// DSpaceObject identifies a community or collection.
type DSpaceObject struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// DSpaceResult is the outcome of a DSpace-only operation.
type DSpaceResult struct {
	Msg      string
	Response *string
	Items    []DSpaceObject
	Total    *int32 // totalElements of a listed page
}
