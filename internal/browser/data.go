package browser

import "time"

// WaitCondition names a navigation lifecycle milestone a render waits for.
type WaitCondition string

const (
	WaitLoad             WaitCondition = "load"
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
	// WaitNetworkIdle0 waits until there are no network connections for 500ms.
	WaitNetworkIdle0 WaitCondition = "networkidle0"
	// WaitNetworkIdle2 waits until there are at most 2 network connections for 500ms.
	WaitNetworkIdle2 WaitCondition = "networkidle2"
)

func (w WaitCondition) Valid() bool {
	switch w {
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle0, WaitNetworkIdle2:
		return true
	default:
		return false
	}
}

// ResourceType is the category a browser assigns to a network request.
type ResourceType string

const (
	ResourceDocument   ResourceType = "document"
	ResourceStylesheet ResourceType = "stylesheet"
	ResourceImage      ResourceType = "image"
	ResourceMedia      ResourceType = "media"
	ResourceFont       ResourceType = "font"
	ResourceScript     ResourceType = "script"
	ResourceXHR        ResourceType = "xhr"
	ResourceFetch      ResourceType = "fetch"
	ResourceManifest   ResourceType = "manifest"
	ResourceWebSocket  ResourceType = "websocket"
	ResourceOther      ResourceType = "other"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceDocument, ResourceStylesheet, ResourceImage, ResourceMedia, ResourceFont,
		ResourceScript, ResourceXHR, ResourceFetch, ResourceManifest, ResourceWebSocket, ResourceOther:
		return true
	default:
		return false
	}
}

// DefaultBlockedResources lists request categories that do not change the
// serialized DOM and only slow rendering down.
func DefaultBlockedResources() []ResourceType {
	return []ResourceType{
		ResourceStylesheet,
		ResourceImage,
		ResourceMedia,
		ResourceFont,
		ResourceManifest,
	}
}

// LaunchParam is everything an Engine needs to start a browser.
type LaunchParam struct {
	headless          bool
	timeout           time.Duration
	ignoreHTTPSErrors bool
	binPath           string
	noSandbox         bool
}

func NewLaunchParam(
	headless bool,
	timeout time.Duration,
	ignoreHTTPSErrors bool,
	binPath string,
	noSandbox bool,
) LaunchParam {
	return LaunchParam{
		headless:          headless,
		timeout:           timeout,
		ignoreHTTPSErrors: ignoreHTTPSErrors,
		binPath:           binPath,
		noSandbox:         noSandbox,
	}
}

func (l LaunchParam) Headless() bool {
	return l.headless
}

func (l LaunchParam) Timeout() time.Duration {
	return l.timeout
}

func (l LaunchParam) IgnoreHTTPSErrors() bool {
	return l.ignoreHTTPSErrors
}

func (l LaunchParam) BinPath() string {
	return l.binPath
}

func (l LaunchParam) NoSandbox() bool {
	return l.noSandbox
}
