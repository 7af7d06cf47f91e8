// Package heureka is a client for the Heureka conversion measurement reports API.
package heureka

import "encoding/json"

// Response is the part of the reports API body this service relies on.
// Each conversion record is kept as raw JSON and never inspected.
type Response struct {
	Conversions []json.RawMessage `json:"conversions"`
}
