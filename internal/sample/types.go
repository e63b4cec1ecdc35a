package sample

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownFilename stands in for jobs uploaded without a filename.
const UnknownFilename = "Unknown File"

// SampleFile is the flattened summary of one completed analysis job.
type SampleFile struct {
	JobID             string  `json:"job_id"`
	Filename          string  `json:"filename"`
	TotalSequences    int     `json:"total_sequences"`
	CreatedAt         string  `json:"created_at"`
	FileSizeMB        int     `json:"file_size_mb"`
	AvgConfidence     float64 `json:"avg_confidence"`
	NovelSpeciesCount int     `json:"novel_species_count"`
}

// Job is a row of the analysis_jobs table as the backend returns it.
// Result is kept verbatim.
type Job struct {
	JobID     string          `json:"job_id"`
	Filename  string          `json:"filename"`
	CreatedAt string          `json:"created_at"`
	Status    string          `json:"status,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// JobResult is the part of a job's result payload the summary is derived from.
type JobResult struct {
	Metadata  *Metadata  `json:"metadata"`
	Sequences []Sequence `json:"sequences"`
}

// Metadata holds the optional precomputed figures of a result.
type Metadata struct {
	AvgConfidence  *float64 `json:"avgConfidence"`
	TotalSequences *float64 `json:"totalSequences"`
}

// Sequence is one per-sequence finding.
type Sequence struct {
	Status       string   `json:"status"`
	NoveltyScore *float64 `json:"novelty_score"`
	Confidence   *float64 `json:"confidence"`
	Taxonomy     string   `json:"taxonomy"`
}

// ParseResult reads a raw result payload. Missing, null and falsy payloads
// yield an empty JobResult. Metadata figures and sequences are read
// independently: a malformed one is left unset and reported in the error,
// while the others are still returned.
func ParseResult(raw json.RawMessage) (JobResult, error) {
	var res JobResult
	if isEmptyPayload(raw) {
		return res, nil
	}

	var fields struct {
		Metadata  json.RawMessage `json:"metadata"`
		Sequences json.RawMessage `json:"sequences"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return JobResult{}, err
	}

	var errs []error
	if !isNull(fields.Metadata) {
		md, err := parseMetadata(fields.Metadata)
		if err != nil {
			errs = append(errs, fmt.Errorf("metadata: %w", err))
		}
		res.Metadata = md
	}
	if !isNull(fields.Sequences) {
		if err := json.Unmarshal(fields.Sequences, &res.Sequences); err != nil {
			res.Sequences = nil
			errs = append(errs, fmt.Errorf("sequences: %w", err))
		}
	}
	return res, errors.Join(errs...)
}

// parseMetadata returns nil when raw is not an object.
func parseMetadata(raw json.RawMessage) (*Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	var (
		md   Metadata
		errs []error
		err  error
	)
	if md.AvgConfidence, err = parseNumber(fields["avgConfidence"]); err != nil {
		errs = append(errs, fmt.Errorf("avgConfidence: %w", err))
	}
	if md.TotalSequences, err = parseNumber(fields["totalSequences"]); err != nil {
		errs = append(errs, fmt.Errorf("totalSequences: %w", err))
	}
	return &md, errors.Join(errs...)
}

func parseNumber(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func isNull(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || string(v) == "null"
}

var emptyObject = json.RawMessage(`{}`)

// normalizeResult returns raw unless it is absent or falsy, in which case
// it returns an empty object.
func normalizeResult(raw json.RawMessage) json.RawMessage {
	if isEmptyPayload(raw) {
		return emptyObject
	}
	return raw
}

func isEmptyPayload(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}
