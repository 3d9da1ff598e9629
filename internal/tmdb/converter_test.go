// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package tmdb

import (
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/streamchaser/internal/models"
)

func TestGenreName(t *testing.T) {
	tests := []struct {
		mediaType string
		id        int
		want      string
	}{
		{models.MediaTypeMovie, 878, "Science Fiction"},
		{models.MediaTypeTV, 10765, "Sci-Fi & Fantasy"},
		{models.MediaTypeTV, 18, "Drama"},
		{models.MediaTypeTV, 878, "Science Fiction"},
		{models.MediaTypeMovie, 10765, ""},
		{models.MediaTypeMovie, 1, ""},
	}
	for _, tt := range tests {
		if got := GenreName(tt.mediaType, tt.id); got != tt.want {
			t.Errorf("GenreName(%s, %d) = %q, want %q", tt.mediaType, tt.id, got, tt.want)
		}
	}
}

func TestToMediaRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := []models.RawMedia{
		{ID: 550, MediaType: "movie", Title: "Fight Club", ReleaseDate: "1999-10-15", GenreIDs: []int{18, 99999}, Popularity: 61.4},
		{ID: 550, MediaType: "tv", Name: "Same Number Show", FirstAirDate: "2020-01-01"},
		{ID: 1399, MediaType: "tv", Name: "Game of Thrones", FirstAirDate: "2011-04-17", GenreIDs: []int{10765, 18}},
		{ID: 550, MediaType: "movie", Title: "Fight Club (duplicate page)"},
		{ID: 287, MediaType: "person", Name: "Brad Pitt"},
		{ID: 42, MediaType: "movie", Title: "   "},
	}

	got := ToMediaRecords(raw, now)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if want := []string{"m550", "t550", "t1399"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	fc := got[0]
	if fc.Title != "Fight Club" || fc.TMDBID != 550 || fc.MediaType != "movie" {
		t.Errorf("first record = %+v", fc)
	}
	if !reflect.DeepEqual(fc.Genres, []string{"Drama"}) {
		t.Errorf("Genres = %v, want [Drama] (unknown id dropped)", fc.Genres)
	}
	if !fc.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", fc.UpdatedAt, now)
	}

	got1399 := got[2]
	if got1399.ReleaseDate != "2011-04-17" {
		t.Errorf("ReleaseDate = %q, want first_air_date", got1399.ReleaseDate)
	}
	if !reflect.DeepEqual(got1399.Genres, []string{"Sci-Fi & Fantasy", "Drama"}) {
		t.Errorf("Genres = %v", got1399.Genres)
	}
}

func TestToMediaRecords_Empty(t *testing.T) {
	if got := ToMediaRecords(nil, time.Now()); len(got) != 0 {
		t.Errorf("ToMediaRecords(nil) = %v, want empty", got)
	}
}
