// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package spanstore

import (
	"fmt"
	"sort"

	"github.com/samirscode/zipkin/model"
)

// Order selects how index lookup results are sorted. Ties are always
// broken by trace id ascending so pagination is deterministic.
type Order int32

const (
	// OrderTimestampDesc returns the most recent entries first.
	OrderTimestampDesc Order = iota
	OrderTimestampAsc
	OrderDurationDesc
	OrderDurationAsc
	// OrderNone sorts by trace id ascending. The contract only asks
	// for a stable order within one call; this is the documented policy.
	OrderNone
)

var orderNames = map[Order]string{
	OrderTimestampDesc: "TIMESTAMP_DESC",
	OrderTimestampAsc:  "TIMESTAMP_ASC",
	OrderDurationDesc:  "DURATION_DESC",
	OrderDurationAsc:   "DURATION_ASC",
	OrderNone:          "NONE",
}

func (o Order) String() string {
	if s, ok := orderNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Order(%d)", int32(o))
}

// ParseOrder maps the wire name of an order to its value. The empty
// string defaults to TIMESTAMP_DESC.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return OrderTimestampDesc, nil
	}
	for o, name := range orderNames {
		if name == s {
			return o, nil
		}
	}
	return OrderTimestampDesc, fmt.Errorf("%w: unknown order %q", ErrInvalidArgument, s)
}

// IndexEntry is one index match prior to ordering: the trace id, its
// representative timestamp and the trace duration known so far.
type IndexEntry struct {
	TraceID  model.TraceID
	Ts       int64
	Duration int64
}

// SortEntries orders index matches per the requested Order, trace id
// ascending breaking every tie.
func SortEntries(entries []IndexEntry, order Order) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case OrderTimestampAsc:
			if a.Ts != b.Ts {
				return a.Ts < b.Ts
			}
		case OrderTimestampDesc:
			if a.Ts != b.Ts {
				return a.Ts > b.Ts
			}
		case OrderDurationAsc:
			if a.Duration != b.Duration {
				return a.Duration < b.Duration
			}
		case OrderDurationDesc:
			if a.Duration != b.Duration {
				return a.Duration > b.Duration
			}
		case OrderNone:
		}
		return a.TraceID < b.TraceID
	})
}
