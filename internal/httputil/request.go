package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxRequestBytes caps a GraphQL request body. Bitstream content never
// travels through the request; it is read from the staging directory.
const MaxRequestBytes = 1 << 20

// ParseJSON decodes the request body into dest. Bodies larger than
// MaxRequestBytes fail with a decode error.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)

	// Unknown fields are allowed: gateways add "extensions" to the envelope.
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
