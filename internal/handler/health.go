package handler

import (
	"encoding/json"
	"net/http"
)

// HealthCheck はサービスの稼働確認エンドポイント。
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
