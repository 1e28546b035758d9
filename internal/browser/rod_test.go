package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// launchOrSkip needs a locally installed Chromium; it never downloads one.
func launchOrSkip(t *testing.T) browser.Handle {
	t.Helper()
	bin, found := launcher.LookPath()
	if !found {
		t.Skip("no chromium binary available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := browser.NewRodEngine().Launch(ctx, browser.NewLaunchParam(true, 20*time.Second, true, bin, true))
	if err != nil {
		t.Skipf("browser could not launch: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestRodEngine_RendersScriptedContent(t *testing.T) {
	h := launchOrSkip(t)

	var imageRequests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pixel.png":
			imageRequests.Add(1)
			w.Header().Set("Content-Type", "image/png")
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Example Domain</title></head><body>
<img src="/pixel.png">
<script>
setTimeout(function () {
  var d = document.createElement("div");
  d.id = "late";
  d.textContent = "rendered";
  document.body.appendChild(d);
}, 100);
</script></body></html>`)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	page, err := h.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close()

	require.NoError(t, page.BlockResources(browser.DefaultBlockedResources()))
	require.NoError(t, page.Navigate(ctx, srv.URL, []browser.WaitCondition{browser.WaitLoad}))
	require.NoError(t, page.WaitForSelector(ctx, "#late"))

	html, err := page.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Example Domain")
	assert.Contains(t, html, `<div id="late">rendered</div>`)
	assert.EqualValues(t, 0, imageRequests.Load())
}

func TestRodEngine_SelectorTimeout(t *testing.T) {
	h := launchOrSkip(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>static</p></body></html>`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	page, err := h.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close()

	require.NoError(t, page.Navigate(ctx, srv.URL, []browser.WaitCondition{browser.WaitDOMContentLoaded}))

	short, cancelShort := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancelShort()
	err = page.WaitForSelector(short, "#never")
	require.Error(t, err)
}
