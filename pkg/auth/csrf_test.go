package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCSRF(t *testing.T) {
	t.Parallel()

	t.Run("reads the state from the page", func(t *testing.T) {
		state, err := extractCSRF(loginPage("csrf-token-1", "hmac-1", "relay-1"))
		require.NoError(t, err)
		require.Equal(t, "csrf-token-1", state.CSRF)
		require.Equal(t, "hmac-1", state.TemplateModel.Hmac)
		require.Equal(t, "relay-1", state.TemplateModel.RelayState)
	})

	t.Run("searches every script tag", func(t *testing.T) {
		page := `<html><body>
<script>var unrelated = 1;</script>
<script>
    window._IDK = {
        templateModel: { hmac: 'hmac-2', relayState: 'relay-2' },
        csrf_token: 'csrf-token-2'
    }
</script>
</body></html>`

		state, err := extractCSRF(page)
		require.NoError(t, err)
		require.Equal(t, "csrf-token-2", state.CSRF)
		require.Equal(t, "hmac-2", state.TemplateModel.Hmac)
	})

	t.Run("fails on a page without the state", func(t *testing.T) {
		_, err := extractCSRF("<html><body><script>var x = 1;</script></body></html>")
		require.ErrorIs(t, err, ErrNoCSRFState)
	})

	t.Run("fails on a plain error page", func(t *testing.T) {
		_, err := extractCSRF("<html><body><h1>Service unavailable</h1></body></html>")
		require.ErrorIs(t, err, ErrNoCSRFState)
	})

	t.Run("fails on an unreadable object literal", func(t *testing.T) {
		page := `<html><body><script>
    window._IDK = { csrf_token: 'a' relayState ]
</script></body></html>`

		_, err := extractCSRF(page)
		require.Error(t, err)
		require.ErrorContains(t, err, "window._IDK")
	})
}
