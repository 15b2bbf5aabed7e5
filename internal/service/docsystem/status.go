package docsystem

import (
	"net/http"
	"strconv"

	models "docsgraph/internal/domain/models/docsystem"
)

// statusMessages is the one table DSpace statuses are reported through.
var statusMessages = map[int]string{
	http.StatusOK:                  models.MsgOk,
	http.StatusCreated:             models.MsgOk,
	http.StatusNoContent:           models.MsgNoContent,
	http.StatusBadRequest:          models.MsgBadRequest,
	http.StatusUnauthorized:        models.MsgUnauthorized,
	http.StatusForbidden:           models.MsgForbidden,
	http.StatusNotFound:            models.MsgNotFound,
	http.StatusUnprocessableEntity: models.MsgUnprocessableEntity,
}

// StatusMessage maps a DSpace HTTP status to a result message. Unmapped codes
// pass through as their decimal form.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return strconv.Itoa(status)
}
