package builder

import "testing"

func TestIsGitURL(t *testing.T) {
	cases := []struct {
		source string
		want   bool
	}{
		{"https://github.com/org/site.git", true},
		{"https://github.com/org/site", true},
		{"http://git.internal/site.git", true},
		{"git@github.com:org/site.git", true},
		{"/srv/site.git", true},
		{"web", false},
		{"./web", false},
		{"/srv/deployments/web", false},
	}
	for _, tc := range cases {
		if got := isGitURL(tc.source); got != tc.want {
			t.Errorf("isGitURL(%q): got %v, want %v", tc.source, got, tc.want)
		}
	}
}
