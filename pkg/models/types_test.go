package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCustomerID(t *testing.T) {
	cases := map[string]string{
		"17850.0": "17850",
		"17850":   "17850",
		" 12.00 ": "12",
		"12.5":    "12.5",
		"NaN":     "",
		"NULL":    "",
		"":        "",
		"C-001":   "C-001",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCustomerID(in), "in=%q", in)
	}
}

func TestHasCustomer(t *testing.T) {
	assert.True(t, TransactionRecord{CustomerID: "1"}.HasCustomer())
	assert.False(t, TransactionRecord{}.HasCustomer())
}
