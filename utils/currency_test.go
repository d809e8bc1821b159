package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyIDR(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{1000, "Rp 1.000"},
		{15000.5, "Rp 15.000,50"},
		{1250000, "Rp 1.250.000"},
		{1000005.25, "Rp 1.000.005,25"},
		{-2500, "-Rp 2.500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrencyIDR(tt.amount))
		})
	}
}
