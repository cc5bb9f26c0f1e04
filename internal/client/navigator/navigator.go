// Package navigator performs the checkout redirect.
package navigator

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

// openURL is a seam for tests.
var openURL = browser.OpenURL

// Browser opens URLs in the system browser and echoes them to Out, so the
// user can follow the link when no browser starts.
type Browser struct {
	Out io.Writer
}

func (b Browser) Navigate(url string) error {
	if b.Out != nil {
		fmt.Fprintf(b.Out, "Opening %s\n", url)
	}
	if err := openURL(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Printer only prints the URL.
type Printer struct {
	Out io.Writer
}

func (p Printer) Navigate(url string) error {
	_, err := fmt.Fprintf(p.Out, "Continue to checkout: %s\n", url)
	return err
}
