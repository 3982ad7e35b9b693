// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package export is the read-only reporting boundary. Records are
// flattened to dotted key/value maps so downstream consumers (CSV
// writers, dashboards) never depend on the engine's types.
package export

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jeremywohl/flatten/v2"

	"github.com/quixsi/muster/internal/model"
)

// Members flattens registration records. Tokens are redacted; an export
// must never hand out self-service credentials.
func Members(members []*model.Member) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(members))
	for _, m := range members {
		redacted := m.Clone()
		redacted.Token = uuid.Nil
		row, err := flattenRecord(redacted)
		if err != nil {
			return nil, err
		}
		delete(row, "token")
		out = append(out, row)
	}
	return out, nil
}

// Tickets flattens ticket/check-in records.
func Tickets(tickets []*model.Ticket) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(tickets))
	for _, t := range tickets {
		row, err := flattenRecord(t)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func flattenRecord(record any) (map[string]string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	flat, err := flatten.FlattenString(string(raw), "", flatten.DotStyle)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal([]byte(flat), &generic); err != nil {
		return nil, err
	}
	row := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			row[k] = val
		default:
			b, _ := json.Marshal(val)
			row[k] = string(b)
		}
	}
	return row, nil
}
