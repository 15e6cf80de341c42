package content

import "testing"

func TestEligible(t *testing.T) {
	cases := []struct {
		name string
		item Item
		want bool
	}{
		{"plain", Item{ID: "1", Text: "hello"}, true},
		{"repost flag", Item{ID: "2", Text: "hello", Repost: true}, false},
		{"reply flag", Item{ID: "3", Text: "hello", Reply: true}, false},
		{"manual retweet", Item{ID: "4", Text: "RT @someone: hello"}, false},
		{"mentions RT later", Item{ID: "5", Text: "not an RT @someone"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.Eligible(); got != tc.want {
				t.Fatalf("Eligible() = %v, want %v", got, tc.want)
			}
		})
	}
}
