package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"ubigeo-api/internal/ubigeo"
)

// errorBody：错误响应体
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

// statusOf：错误种类 → HTTP 状态码
// 约束：InvalidQuery → 400，NotFound → 404，索引未就绪 → 503；数据集错误（仅重载时出现）→ 422
func statusOf(err error) int {
	switch {
	case errors.Is(err, ubigeo.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ubigeo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ubigeo.ErrNotReady):
		return http.StatusServiceUnavailable
	}
	switch ubigeo.Kind(err) {
	case "parse_error", "build_error":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func kindOf(err error) string {
	if errors.Is(err, ubigeo.ErrNotReady) {
		return "not_ready"
	}
	return ubigeo.Kind(err)
}
