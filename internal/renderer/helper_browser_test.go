package renderer_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/stretchr/testify/mock"
)

type engineMock struct {
	mock.Mock
}

// Launch mocks the Launch method
func (e *engineMock) Launch(ctx context.Context, param browser.LaunchParam) (browser.Handle, error) {
	args := e.Called(ctx, param)
	var handle browser.Handle
	if args.Get(0) != nil {
		handle = args.Get(0).(browser.Handle)
	}
	return handle, args.Error(1)
}

type handleMock struct {
	mock.Mock
}

func (h *handleMock) NewPage(ctx context.Context) (browser.Page, error) {
	args := h.Called(ctx)
	var page browser.Page
	if args.Get(0) != nil {
		page = args.Get(0).(browser.Page)
	}
	return page, args.Error(1)
}

func (h *handleMock) Close() error {
	return h.Called().Error(0)
}

type pageMock struct {
	mock.Mock
}

func (p *pageMock) BlockResources(types []browser.ResourceType) error {
	return p.Called(types).Error(0)
}

func (p *pageMock) Navigate(ctx context.Context, url string, waitUntil []browser.WaitCondition) error {
	return p.Called(ctx, url, waitUntil).Error(0)
}

func (p *pageMock) WaitForSelector(ctx context.Context, selector string) error {
	return p.Called(ctx, selector).Error(0)
}

func (p *pageMock) Content(ctx context.Context) (string, error) {
	args := p.Called(ctx)
	return args.String(0), args.Error(1)
}

func (p *pageMock) Close() error {
	return p.Called().Error(0)
}

// newBrowserMocksForTest wires an engine that launches one handle whose
// pages are handed out in order.
func newBrowserMocksForTest(t *testing.T, pages ...*pageMock) (*engineMock, *handleMock) {
	t.Helper()
	engine := new(engineMock)
	handle := new(handleMock)
	engine.On("Launch", mock.Anything, mock.Anything).Return(handle, nil)
	for _, p := range pages {
		handle.On("NewPage", mock.Anything).Return(p, nil).Once()
	}
	handle.On("Close").Return(nil)
	return engine, handle
}

// newSuccessfulPageForTest returns a page that renders html without filtering checks.
func newSuccessfulPageForTest(t *testing.T, html string) *pageMock {
	t.Helper()
	p := new(pageMock)
	p.On("BlockResources", mock.Anything).Return(nil)
	p.On("Navigate", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	p.On("WaitForSelector", mock.Anything, mock.Anything).Return(nil)
	p.On("Content", mock.Anything).Return(html, nil)
	p.On("Close").Return(nil)
	return p
}
