package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmallTalk(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"hello", GreetingReply, true},
		{"Hey there!", GreetingReply, true},
		{"good morning", GreetingReply, true},
		{"thank you so much!!", ThanksReply, true},
		{"who are you?", IdentityReply, true},
		{"are you a bot", IdentityReply, true},
		{"tell me a joke", JokeReply, true},
		{"what's the weather like?", WeatherReply, true},
		{"bye", FarewellReply, true},
		{"hello, show me gold rings", "", false},
		{"thanks, how much is the pendant", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := SmallTalk(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
