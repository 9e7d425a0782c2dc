package allowlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

var _ ports.AccessPolicy = (*StaticPolicy)(nil)

func TestIsAllowed_EmptyAllowListDeniesEverything(t *testing.T) {
	lists := []string{"", " ", "   ", ",", " , ,", "\t"}
	emails := []string{"", " ", "a@x.com", "user@example.com"}

	for _, list := range lists {
		for _, email := range emails {
			assert.False(t, IsAllowed(email, list), "list=%q email=%q", list, email)
			assert.False(t, NewStaticPolicy(list).IsAllowed(email), "policy list=%q email=%q", list, email)
		}
	}
}

func TestIsAllowed_Membership(t *testing.T) {
	const list = " a@x.com ,b@x.com,  c@x.com"

	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"b@x.com", true},
		{"c@x.com", true},
		// matching is exact: no case folding, prefix or substring hits
		{"A@x.com", false},
		{"a@x.co", false},
		{"x.com", false},
		{"a@x.com,b@x.com", false},
		{" a@x.com", false},
		{"denied@example.com", false},
		{"", false},
	}

	policy := NewStaticPolicy(list)
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowed(tt.email, list))
			assert.Equal(t, tt.want, policy.IsAllowed(tt.email))
		})
	}
}

func TestStaticPolicy_Len(t *testing.T) {
	assert.Equal(t, 2, NewStaticPolicy("a@x.com, b@x.com, a@x.com,").Len())
	assert.Equal(t, 0, NewStaticPolicy("").Len())

	var nilPolicy *StaticPolicy
	assert.Equal(t, 0, nilPolicy.Len())
	assert.False(t, nilPolicy.IsAllowed("a@x.com"))
}
