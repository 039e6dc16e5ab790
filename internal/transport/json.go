package transport

import (
	"encoding/json"
	"net/http"
)

type detail struct {
	Detail string `json:"detail"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, detail{Detail: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
