// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package models

import "sort"

// Provider is a streaming service offering a title.
type Provider struct {
	ID              int64  `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// ProviderAvailability is the watch-provider offer for one country, mirroring
// the TMDB /watch/providers payload.
type ProviderAvailability struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
	Free     []Provider `json:"free,omitempty"`
	Ads      []Provider `json:"ads,omitempty"`
}

// IsEmpty reports whether no provider offers the title.
func (a ProviderAvailability) IsEmpty() bool {
	return len(a.Flatrate) == 0 && len(a.Rent) == 0 && len(a.Buy) == 0 &&
		len(a.Free) == 0 && len(a.Ads) == 0
}

// ProviderNames returns the distinct provider names across all offer kinds,
// ordered by display priority then name.
func (a ProviderAvailability) ProviderNames() []string {
	best := make(map[string]int)
	for _, group := range [][]Provider{a.Flatrate, a.Free, a.Ads, a.Rent, a.Buy} {
		for _, p := range group {
			if p.Name == "" {
				continue
			}
			if prio, ok := best[p.Name]; !ok || p.DisplayPriority < prio {
				best[p.Name] = p.DisplayPriority
			}
		}
	}

	names := make([]string, 0, len(best))
	for name := range best {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if best[names[i]] != best[names[j]] {
			return best[names[i]] < best[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// ProviderResult is the outcome of one watch-provider lookup.
type ProviderResult struct {
	MediaID   string                          `json:"media_id"`
	Providers map[string]ProviderAvailability `json:"data"`
}
