package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/logging"
	"github.com/muhammadmuzzammil1998/jsonc"
)

// Load reads the manifest at path. Any read, parse or validation failure
// yields the bootstrap fallback; the cause is only logged at debug level.
func Load(path string, logger *log.Logger) *Registry {
	logger = logging.OrDiscard(logger)

	reg, err := ParseFile(path)
	if err != nil {
		logger.Debug("manifest unavailable, using bootstrap entry", "path", path, "err", err)
		return Fallback()
	}
	logger.Debug("manifest loaded", "path", path, "commands", reg.Len())
	return reg
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a manifest document. Comments are tolerated; the result
// keeps the document's key order.
func Parse(data []byte) (*Registry, error) {
	plain := jsonc.ToJSON(data)

	result, err := Validate(plain)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		msgs := make([]string, len(result.Issues))
		for i, issue := range result.Issues {
			msgs[i] = issue.String()
		}
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
	}

	entries, err := decodeOrdered(plain)
	if err != nil {
		return nil, err
	}
	return New(entries...)
}

// decodeOrdered walks the top-level object token by token; a map would lose
// the order that completion output depends on.
func decodeOrdered(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("manifest must be a JSON object")
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading manifest key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected manifest token %v", keyTok)
		}
		var path string
		if err := dec.Decode(&path); err != nil {
			return nil, fmt.Errorf("reading path for %q: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Path: path})
	}
	return entries, nil
}
