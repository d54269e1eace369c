package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodySize = 1 << 20 // 1 MiB

// decodeJSON reads and decodes a JSON request body into dst, rejecting
// unknown fields and oversized payloads.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	// One JSON value per request.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("unexpected trailing data in request body")
	}
	return nil
}

// parseYearParam extracts the year query parameter, defaulting to the
// current year.
func parseYearParam(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return year, nil
}

// parseIDPath extracts the {id} path value.
func parseIDPath(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// parseYearPath extracts the {year} path value.
func parseYearPath(r *http.Request) (int, error) {
	v := r.PathValue("year")
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return year, nil
}

func parseBoolParam(query url.Values, name string) bool {
	v := strings.TrimSpace(query.Get(name))
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
