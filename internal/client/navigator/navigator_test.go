package navigator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser(t *testing.T) {
	orig := openURL
	t.Cleanup(func() { openURL = orig })

	var opened []string
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	var out bytes.Buffer
	require.NoError(t, Browser{Out: &out}.Navigate("https://x/checkout/u1"))
	assert.Equal(t, []string{"https://x/checkout/u1"}, opened)
	assert.Equal(t, "Opening https://x/checkout/u1\n", out.String())

	openURL = func(string) error { return errors.New("no display") }
	err := Browser{}.Navigate("https://x")
	assert.ErrorContains(t, err, "open browser: no display")
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Printer{Out: &out}.Navigate("https://x/checkout/u1"))
	assert.Equal(t, "Continue to checkout: https://x/checkout/u1\n", out.String())
}
