package dto

import "time"

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
