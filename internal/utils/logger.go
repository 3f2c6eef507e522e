package utils

import (
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; signature bytes and keys never go here.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
