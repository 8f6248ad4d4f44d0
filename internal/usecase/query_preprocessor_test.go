package usecase

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dealfinder/backend/internal/domain"
)

func TestBuildKeywords(t *testing.T) {
	p := NewQueryPreprocessor(false, zerolog.Nop())

	tests := []struct {
		name string
		ref  domain.ReferenceItem
		want string
	}{
		{
			name: "search query wins over title",
			ref:  domain.ReferenceItem{Title: "Apple iPhone 14 Case", SearchQuery: "  clear   case "},
			want: "clear case",
		},
		{
			name: "strips storage and pack counts",
			ref:  domain.ReferenceItem{Title: "Apple iPhone 14 Pro Max 128GB Case, 2 Pack"},
			want: "Apple iPhone 14 Pro Max Case",
		},
		{
			name: "strips wattage",
			ref:  domain.ReferenceItem{Title: "20W USB-C Fast Charger"},
			want: "USB-C Fast Charger",
		},
		{
			name: "removes marketing noise",
			ref:  domain.ReferenceItem{Title: "NEW Upgraded Premium Phone Holder for Car"},
			want: "Phone Holder Car",
		},
		{
			name: "pack of pattern",
			ref:  domain.ReferenceItem{Title: "Screen Protector (Pack of 3)"},
			want: "Screen Protector",
		},
		{
			name: "falls back to raw title when everything is noise",
			ref:  domain.ReferenceItem{Title: "New Premium"},
			want: "New Premium",
		},
		{
			name: "empty reference",
			ref:  domain.ReferenceItem{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.BuildKeywords(tt.ref); got != tt.want {
				t.Errorf("BuildKeywords() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildKeywords_Truncates(t *testing.T) {
	p := NewQueryPreprocessor(true, zerolog.Nop())
	title := strings.Repeat("silicone ", 30)

	got := p.BuildKeywords(domain.ReferenceItem{Title: title})
	if len(got) > maxQueryLength {
		t.Errorf("len(BuildKeywords()) = %d, want <= %d", len(got), maxQueryLength)
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "silic") {
		t.Errorf("BuildKeywords() cut mid-word: %q", got)
	}
}

func TestTruncateAtWord(t *testing.T) {
	if got := truncateAtWord("short", 10); got != "short" {
		t.Errorf("truncateAtWord() = %q, want short", got)
	}
	if got := truncateAtWord("aaaa bbbb cccc", 12); got != "aaaa bbbb" {
		t.Errorf("truncateAtWord() = %q, want 'aaaa bbbb'", got)
	}
	// no usable boundary in the second half: hard cut
	if got := truncateAtWord("abcdefghijkl", 5); got != "abcde" {
		t.Errorf("truncateAtWord() = %q, want abcde", got)
	}
}
