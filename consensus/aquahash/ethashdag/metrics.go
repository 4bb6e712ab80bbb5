// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package ethashdag

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	generationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aquahash",
		Name:      "generation_seconds",
		Help:      "Time spent generating caches and datasets.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
	}, []string{"kind"})

	storeLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aquahash",
		Name:      "store_lookups_total",
		Help:      "Store lookups by kind and result (hit, miss, corrupt).",
	}, []string{"kind", "result"})

	hashesComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aquahash",
		Name:      "hashes_total",
		Help:      "Hashimoto evaluations by flavour (light, full).",
	}, []string{"flavour"})

	lightHashes = hashesComputed.WithLabelValues("light")
	fullHashes  = hashesComputed.WithLabelValues("full")
)

// RegisterMetrics registers the aquahash collectors with reg. Registering
// twice with the same registry is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{generationSeconds, storeLookups, hashesComputed} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

func observeGeneration(kind Kind, start time.Time) {
	generationSeconds.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

func recordLookup(kind Kind, err error) {
	result := "hit"
	switch {
	case err == nil:
	case errors.Is(err, ErrStorageCorruption):
		result = "corrupt"
	default:
		result = "miss"
	}
	storeLookups.WithLabelValues(string(kind), result).Inc()
}
