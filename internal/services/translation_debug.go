package services

import (
	"log"
	"os"
	"strings"
)

var translationDebugEnabled = false

func init() {
	if v := strings.ToLower(os.Getenv("TRANSLATION_DEBUG")); v != "" {
		translationDebugEnabled = v == "1" || v == "true" || v == "yes"
		if translationDebugEnabled {
			log.Println("[TRANSLATION] Debug logging: ENABLED")
		}
	}
}

// debugLog logs only when TRANSLATION_DEBUG is set. Per-request noise:
// cache hits, skipped fields, raw model responses.
func debugLog(format string, args ...interface{}) {
	if translationDebugEnabled {
		log.Printf("[TRANSLATION DEBUG] "+format, args...)
	}
}

// infoLog always logs. Model loads, fallbacks, cache failures.
func infoLog(format string, args ...interface{}) {
	log.Printf("[TRANSLATION] "+format, args...)
}
