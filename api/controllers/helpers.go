package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// pathID parses an integer path parameter. Non-integer ids fall
// through to not-found, the same as an id that matches nothing.
func pathID(r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
