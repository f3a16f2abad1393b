package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText_RemovesAllHTML(t *testing.T) {
	require.Equal(t, "Hello  World", Text(`Hello <script>alert('xss')</script> World`))
	require.Equal(t, "Morning run", Text(`<b>Morning run</b>`))
	require.Equal(t, "plain", Text("  plain  "))
}

func TestRich_KeepsSafeMarkup(t *testing.T) {
	require.Equal(t, "<p>We meet at the <b>east gate</b></p>", Rich(`<p>We meet at the <b>east gate</b></p>`))
	require.Equal(t, "click", Rich(`<a onclick="steal()">click</a>`))
	require.NotContains(t, Rich(`<iframe src="https://evil.example"></iframe>ok`), "iframe")
}
