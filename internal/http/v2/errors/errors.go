// Package errors define el envelope JSON de error de la API v2.
package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Step    string `json:"step,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe la respuesta HTTP para err.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	for k, vs := range appErr.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Step:    appErr.Step,
		Detail:  appErr.Detail,
	})
}
