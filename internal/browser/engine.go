package browser

import "context"

// Engine launches browsers.
type Engine interface {
	Launch(ctx context.Context, param LaunchParam) (Handle, error)
}

// Handle is one running browser. Pages opened from the same handle are
// independent and may be used concurrently.
type Handle interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one browser tab. Every method that talks to the browser may block
// until ctx is done. Close must work even after ctx has expired.
type Page interface {
	// BlockResources aborts every subsequent request whose type is listed.
	BlockResources(types []ResourceType) error

	// Navigate loads url and waits for each condition in order.
	Navigate(ctx context.Context, url string, waitUntil []WaitCondition) error

	// WaitForSelector blocks until selector matches an element.
	WaitForSelector(ctx context.Context, selector string) error

	// Content returns the serialized document.
	Content(ctx context.Context) (string, error)

	Close() error
}
