package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/intervw/internal/model"
)

func TestFilterSubmissions(t *testing.T) {
	subs := []model.Submission{
		{ID: "1", Name: "Ann", Company: "Acme", Country: "US"},
		{ID: "2", Name: "Bob", Company: "Globex", Country: "Germany"},
		{ID: "3", Name: "Cleo", Company: "Initech", Country: "Canada"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"empty keeps all", "", []string{"1", "2", "3"}},
		{"blank keeps all", "   ", []string{"1", "2", "3"}},
		{"matches name", "bob", []string{"2"}},
		{"matches company ignoring case", "ACME", []string{"1"}},
		{"matches country substring", "an", []string{"1", "2", "3"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSubmissions(subs, tt.query)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
