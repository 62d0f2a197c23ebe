package pipeline

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ReadDocument loads one already-extracted text document from disk and
// applies the normalization the upstream text-extraction collaborator
// guarantees: CRLF to LF and repeated horizontal whitespace collapsed.
// Reading it here keeps file-based and string-based callers identical.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return NormalizeText(string(data)), nil
}

var hspaceRe = regexp.MustCompile(`[ \t]{2,}`)

// NormalizeText applies the document-text contract to a raw string.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return hspaceRe.ReplaceAllString(text, "  ")
}
