package journey

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Trailer markers. The prompt builder and ParseMetadata must agree on these.
const (
	TrailerStart = "<<DIAGNOSTIC:"
	TrailerEnd   = ">>"
)

// trailerPattern matches the narrowest span between the markers, across lines.
var trailerPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(TrailerStart) + `(.*?)` + regexp.QuoteMeta(TrailerEnd))

// ParseMetadata splits a model reply into the text shown to the learner and
// the diagnostic metadata embedded in it. Without a trailer, or with one
// that does not decode to valid metadata, the reply is returned unchanged
// and md is nil.
func ParseMetadata(reply string) (visible string, md *Metadata) {
	loc := trailerPattern.FindStringSubmatchIndex(reply)
	if loc == nil {
		return reply, nil
	}

	parsed, err := decodeMetadata(reply[loc[2]:loc[3]])
	if err != nil {
		return reply, nil
	}

	visible = strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
	return visible, parsed
}

func decodeMetadata(payload string) (*Metadata, error) {
	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode trailer: %w", err)
	}

	schema, err := compiledMetadataSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate trailer: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal([]byte(payload), &md); err != nil {
		return nil, fmt.Errorf("decode trailer: %w", err)
	}
	if md.TopicsAssessed == nil {
		md.TopicsAssessed = []string{}
	}
	return &md, nil
}

// FormatTrailer renders md in the exact form ParseMetadata extracts. JSON
// has no NaN or infinities, so a non-finite confidence is written as 0
// (NaN, -Inf) or 1 (+Inf).
func FormatTrailer(md Metadata) string {
	if md.TopicsAssessed == nil {
		md.TopicsAssessed = []string{}
	}
	switch {
	case math.IsNaN(md.Confidence), math.IsInf(md.Confidence, -1):
		md.Confidence = 0
	case math.IsInf(md.Confidence, 1):
		md.Confidence = 1
	}
	// Only strings and a finite float remain, so Marshal cannot fail.
	b, _ := json.Marshal(md)
	return TrailerStart + string(b) + TrailerEnd
}
