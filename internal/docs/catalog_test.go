package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.Len(t, c.Events, 5)
	first := c.Events[0]
	assert.Equal(t, "permission-updated", first.ID)
	assert.Equal(t, []string{"project.{projectId}", "user.{userId}"}, first.Channels)
	assert.True(t, first.Payload[1].Nullable)
	assert.Contains(t, string(first.DescriptionHTML), "<strong>without requiring a re-login</strong>")
	assert.Contains(t, string(first.NotesHTML), "<code>ShouldBroadcastNow</code>")
	assert.Len(t, c.Channels, 5)
}

func TestListenName(t *testing.T) {
	assert.Equal(t, "PermissionUpdated", Event{BroadcastAs: "PermissionUpdated", Class: `App\Events\PermissionUpdated`}.ListenName())
	assert.Equal(t, ".message.sent", Event{BroadcastAs: "message.sent", Class: `App\Events\ChannelMessageSent`}.ListenName())
}

func TestParseValidates(t *testing.T) {
	cases := map[string]string{
		"missing id":   "events:\n  - {broadcast_as: x, channel_type: private}\n",
		"duplicate id": "events:\n  - {id: a, broadcast_as: x, channel_type: private}\n  - {id: a, broadcast_as: y, channel_type: public}\n",
		"bad channel":  "events:\n  - {id: a, broadcast_as: x, channel_type: presence}\n",
		"not yaml":     "events: [",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	c, err := Parse([]byte("events:\n  - id: a\n    broadcast_as: x\n    channel_type: public\n    description: \"hi <script>alert(1)</script>\"\n"))
	require.NoError(t, err)

	html := string(c.Events[0].DescriptionHTML)
	assert.False(t, strings.Contains(html, "<script>"), html)
}

func TestBroadcasterURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080", Broadcaster{Host: "localhost", Port: 8080, Scheme: "http"}.URL())
	assert.Equal(t, "wss://rt.example.com:443", Broadcaster{Host: "rt.example.com", Port: 443, Scheme: "https"}.URL())
}
