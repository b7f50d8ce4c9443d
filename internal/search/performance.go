/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package search

import "time"

// Performance summarizes a search log.
type Performance struct {
	TotalStrategies      int           `json:"total_strategies"`
	SuccessfulStrategies int           `json:"successful_strategies"`
	TotalTracks          int           `json:"total_tracks"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	SuccessRate          float64       `json:"success_rate"`
}

// AnalyzePerformance aggregates a search log. An empty log yields zeros.
func AnalyzePerformance(log []Result) Performance {
	var p Performance
	p.TotalStrategies = len(log)
	if p.TotalStrategies == 0 {
		return p
	}

	var total time.Duration
	for _, r := range log {
		if r.Success {
			p.SuccessfulStrategies++
		}
		p.TotalTracks += len(r.Tracks)
		total += r.Duration
	}
	p.AverageExecutionTime = total / time.Duration(p.TotalStrategies)
	p.SuccessRate = float64(p.SuccessfulStrategies) / float64(p.TotalStrategies) * 100
	return p
}
