// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import "time"

// TimelineVersion tags assembled timelines so clients can detect format
// changes.
const TimelineVersion = "v1.0"

// TimelineMetadata describes how one timeline page was assembled.
type TimelineMetadata struct {
	AlgorithmUsed          string             `json:"algorithm_used"`
	SignalWeights          map[string]float64 `json:"signal_weights"`
	TotalItems             int                `json:"total_items"`
	NewItemsSinceLastFetch int                `json:"new_items_since_last_fetch"`
	LastUpdated            time.Time          `json:"last_updated"`
	TimelineVersion        string             `json:"timeline_version"`
}

// PageInfo is the pagination block attached to every timeline response.
type PageInfo struct {
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"total_count"`
	HasNext    bool `json:"has_next"`
}

// TimelinePage is one paginated slice of an assembled timeline.
type TimelinePage struct {
	Items      []RankedItem     `json:"items"`
	Metadata   TimelineMetadata `json:"metadata"`
	Pagination PageInfo         `json:"pagination"`
}

// Paginate slices items by offset and limit. The offset is clamped to
// [0, len(items)]. A limit of zero yields an empty page whose HasNext still
// reports whether items remain past the offset; default-limit resolution is
// the caller's concern.
func Paginate(items []RankedItem, offset, limit int) ([]RankedItem, PageInfo) {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	info := PageInfo{Offset: offset, Limit: limit, TotalCount: total}
	if limit <= 0 {
		info.HasNext = offset < total
		return []RankedItem{}, info
	}
	end := offset + limit
	if end > total {
		end = total
	}
	info.HasNext = end < total
	return items[offset:end], info
}
