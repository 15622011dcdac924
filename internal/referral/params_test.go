package referral

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromRawURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "ref param", raw: "https://thejaayveeworld.com/?ref=partner42", want: "partner42"},
		{name: "referral fallback", raw: "https://thejaayveeworld.com/?referral=abc", want: "abc"},
		{name: "ref preferred", raw: "/?referral=abc&ref=xyz", want: "xyz"},
		{name: "empty ref falls back", raw: "/?ref=&referral=abc", want: "abc"},
		{name: "no params", raw: "https://thejaayveeworld.com/ease", want: ""},
		{name: "unparsable url", raw: "http://[::1", want: ""},
		{name: "malformed query keeps valid pairs", raw: "/?ref=ok&bad=%zz", want: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromRawURL(tt.raw))
		})
	}
}

func TestTokenFromURL_Nil(t *testing.T) {
	assert.Equal(t, "", TokenFromURL(nil))
	assert.Equal(t, "", TokenFromURL(&url.URL{Path: "/"}))
}
