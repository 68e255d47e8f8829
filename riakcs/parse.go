// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import (
	"encoding/json"
	"fmt"
)

// Parse turns raw stats into metrics. Operation fields come first, then
// pool fields, each in the order of their field list. Unknown fields are
// ignored. A known field with a wrong shape is skipped and reported in the
// second return value. The third one is only set when the stats are not a
// JSON object.
func Parse(raw []byte) ([]Metric, []error, error) {
	var stats map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, nil, &DecodeError{Err: err}
	}
	metrics := []Metric{}
	skipped := []error{}
	if len(stats) == 0 {
		return metrics, skipped, nil
	}

	for _, field := range operationFields {
		values, err := fieldValues(stats, field, 1+len(operationGauges))
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if values == nil {
			continue
		}
		metrics = append(metrics, Metric{
			Name:  metricPrefix + field,
			Kind:  KindCount,
			Value: values[0],
		})
		for i, gauge := range operationGauges {
			metrics = append(metrics, Metric{
				Name:  metricPrefix + field + "_" + gauge,
				Kind:  KindGauge,
				Value: values[1+i],
			})
		}
	}

	for _, field := range poolFields {
		values, err := fieldValues(stats, field, len(poolGauges))
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if values == nil {
			continue
		}
		for i, gauge := range poolGauges {
			metrics = append(metrics, Metric{
				Name:  metricPrefix + field + "_" + gauge,
				Kind:  KindGauge,
				Value: values[i],
			})
		}
	}

	return metrics, skipped, nil
}

// fieldValues returns the values of a field, or nil if the field is
// absent. At least expected values should be present and none of them can
// be null. Extra values are dropped.
func fieldValues(stats map[string]json.RawMessage, field string, expected int) ([]float64, error) {
	raw, ok := stats[field]
	if !ok {
		return nil, nil
	}
	var decoded []*float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &MalformedFieldError{Field: field, Expected: expected, Err: err}
	}
	if len(decoded) < expected {
		return nil, &MalformedFieldError{Field: field, Expected: expected, Got: len(decoded)}
	}
	values := make([]float64, expected)
	for i, value := range decoded[:expected] {
		if value == nil {
			return nil, &MalformedFieldError{
				Field:    field,
				Expected: expected,
				Got:      len(decoded),
				Err:      fmt.Errorf("value %d is null", i),
			}
		}
		values[i] = *value
	}
	return values, nil
}
