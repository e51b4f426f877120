package server

import (
	"encoding/json"
	"net/http"

	"keeper-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/map", h.handleMap)
}

// /debug/map - места, объекты и проверка резидентов клеток.
// Снимок собирается горутиной тика, поэтому карту здесь не трогаем.
func (h *DebugHandler) handleMap(w http.ResponseWriter, r *http.Request) {
	sum := h.Service.Summary()
	status := http.StatusOK
	if sum.Residency != "ok" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, sum)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
