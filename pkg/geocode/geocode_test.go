package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPincode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"560001", true},
		{"110001", true},
		{"56001", false},
		{"5600011", false},
		{"abcdef", false},
		{"56000a", false},
		{"", false},
		{" 560001", false},
		{"५६०московский", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidPincode(tt.in), "pincode %q", tt.in)
	}
}

func TestExtractPincode(t *testing.T) {
	pin, ok := ExtractPincode("floods in 560001 today")
	assert.True(t, ok)
	assert.Equal(t, "560001", pin)

	// First match wins on ambiguity.
	pin, ok = ExtractPincode("110001 vs 560001")
	assert.True(t, ok)
	assert.Equal(t, "110001", pin)

	// Longer digit runs are not pincodes.
	_, ok = ExtractPincode("order 5600012 shipped")
	assert.False(t, ok)

	_, ok = ExtractPincode("no numbers here")
	assert.False(t, ok)
}

func TestAddressTerms(t *testing.T) {
	addr := &Address{
		Village: "Kadubeesanahalli",
		City:    "Bengaluru",
		State:   "Karnataka",
		Country: "India",
	}
	assert.Equal(t,
		[]string{"Kadubeesanahalli", "Bengaluru", "Karnataka", "India"},
		addr.Terms(),
		"terms must be most-specific first with empty fields dropped")

	assert.Empty(t, (&Address{}).Terms())
	assert.Nil(t, (*Address)(nil).Terms())
}
