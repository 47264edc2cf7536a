package adapters

import (
	"testing"
)

func TestExtractFundingMeta(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		amount float64
		round  string
		taiwan bool
		asia   bool
	}{
		{
			name:   "million with series",
			text:   "Acme raises $25 million Series B to expand edge AI",
			amount: 25,
			round:  "series b",
		},
		{
			name:   "billion",
			text:   "MegaCorp closes $1.2 billion round",
			amount: 1200,
		},
		{
			name:   "abbreviated M",
			text:   "Startup lands $8.5M seed round in Taipei",
			amount: 8.5,
			round:  "seed",
			taiwan: true,
			asia:   true,
		},
		{
			name:  "asia without taiwan",
			text:  "Tokyo-based robotics firm raises pre-seed funding",
			round: "pre-seed",
			asia:  true,
		},
		{
			name: "no metadata",
			text: "Company announces new product line",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ExtractFundingMeta(tt.text)
			if meta.AmountMillions != tt.amount {
				t.Errorf("amount = %v, want %v", meta.AmountMillions, tt.amount)
			}
			if meta.Round != tt.round {
				t.Errorf("round = %q, want %q", meta.Round, tt.round)
			}
			if meta.IsTaiwan != tt.taiwan {
				t.Errorf("taiwan = %v, want %v", meta.IsTaiwan, tt.taiwan)
			}
			if meta.IsAsia != tt.asia {
				t.Errorf("asia = %v, want %v", meta.IsAsia, tt.asia)
			}
		})
	}
}

func TestTaiwanImpliesAsia(t *testing.T) {
	meta := ExtractFundingMeta("Hsinchu chip startup raises $3M")
	if !meta.IsTaiwan || !meta.IsAsia {
		t.Fatalf("Taiwan markers must set both flags: %+v", meta)
	}
}
