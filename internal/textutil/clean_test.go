package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Aisle 4  ", "Aisle 4"},
		{"  ", ""},                    // non-breaking spaces only
		{"Not carried in your RSC", "Not carried in your RSC"},
		{"qty​: 3", "qty: 3"},              // zero-width space stripped
		{"", ""},
		{"Cancelled - Closeout", "Cancelled - Closeout"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Clean(tc.in), "%q", tc.in)
	}
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank("   "))
	assert.True(t, Blank(" "))
	assert.False(t, Blank(" x "))
}
