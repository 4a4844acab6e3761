package router

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryInt parses an integer query value, returning def when absent.
func (r *Request) GetQueryInt(key string, def int) (int, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return def, nil
	}

	value, err := strconv.Atoi(queryValue)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Query parameter " + key + " must be an integer")
	}

	return value, nil
}

// Principal returns the caller set by the Authenticate middleware.
func (r *Request) Principal() (Principal, bool) {
	return PrincipalFrom(r.Context())
}

// DecodeBody decodes a single JSON document into dst, rejecting unknown fields.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// FormValues parses an urlencoded or multipart form body.
func (r *Request) FormValues() (map[string]string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, goerror.NewInvalidFormat("Invalid request content-type")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/x-www-form-urlencoded":
		err = r.ParseForm()
	case "multipart/form-data":
		err = r.ParseMultipartForm(maxBodyBytes)
	default:
		return nil, goerror.NewInvalidFormat("Invalid request content-type")
	}
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}

	return out, nil
}
