// Package parser pulls machine-readable payloads out of model responses.
// LLMs wrap JSON in prose and code fences and routinely emit slightly broken
// syntax, so extraction and decoding are both lenient.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// ExtractJSONPayload digs the JSON object out of a model response. Strategy
// order: json code fence, bare code fence, first-to-last brace span, then the
// whole text as-is.
func ExtractJSONPayload(raw string) string {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

// UnmarshalLenient decodes payload into v, making one repair attempt when the
// payload is not valid JSON. Models drop quotes and leave trailing commas
// often enough to make the retry worth it.
func UnmarshalLenient(payload string, v interface{}) error {
	err := json.Unmarshal([]byte(payload), v)
	if err == nil {
		return nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return err
	}
	if repairedErr := json.Unmarshal([]byte(repaired), v); repairedErr != nil {
		return err
	}
	return nil
}
