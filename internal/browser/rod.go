package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

/*
RodEngine drives Chromium over the DevTools protocol.

Launch starts (or downloads) a browser binary through the rod launcher and
connects to it. Every page opened from the handle gets its own target, so
renders never share navigation state.
*/
type RodEngine struct{}

func NewRodEngine() RodEngine {
	return RodEngine{}
}

var ErrUnsupportedWaitCondition = errors.New("unsupported wait condition")

func (RodEngine) Launch(ctx context.Context, param LaunchParam) (Handle, error) {
	launchCtx := ctx
	if param.Timeout() > 0 {
		var cancel context.CancelFunc
		launchCtx, cancel = context.WithTimeout(ctx, param.Timeout())
		defer cancel()
	}

	l := launcher.New().
		Context(launchCtx).
		Headless(param.Headless()).
		NoSandbox(param.NoSandbox())
	if param.BinPath() != "" {
		l = l.Bin(param.BinPath())
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("launch browser process: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	if param.IgnoreHTTPSErrors() {
		if err := b.IgnoreCertErrors(true); err != nil {
			_ = b.Close()
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("ignore certificate errors: %w", err)
		}
	}

	return &rodHandle{browser: b, launcher: l}, nil
}

type rodHandle struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	once     sync.Once
	closeErr error
}

func (h *rodHandle) NewPage(ctx context.Context) (Page, error) {
	p, err := h.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	// detach from ctx so the page outlives the call that opened it
	return &rodPage{page: p.Context(context.Background())}, nil
}

func (h *rodHandle) Close() error {
	h.once.Do(func() {
		h.closeErr = h.browser.Close()
		h.launcher.Kill()
		h.launcher.Cleanup()
	})
	return h.closeErr
}

type rodPage struct {
	page   *rod.Page
	router *rod.HijackRouter
}

func (p *rodPage) BlockResources(types []ResourceType) error {
	if len(types) == 0 {
		return nil
	}

	blocked := make(map[string]struct{}, len(types))
	for _, t := range types {
		blocked[strings.ToLower(string(t))] = struct{}{}
	}

	router := p.page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		if _, ok := blocked[strings.ToLower(string(h.Request.Type()))]; ok {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return err
	}

	go router.Run()
	p.router = router
	return nil
}

func (p *rodPage) Navigate(ctx context.Context, url string, waitUntil []WaitCondition) error {
	page := p.page.Context(ctx)

	// waiters must be registered before navigation starts or early events are lost
	waits := make([]func() error, 0, len(waitUntil))
	for _, cond := range waitUntil {
		wait, err := waiterFor(page, cond)
		if err != nil {
			return err
		}
		waits = append(waits, wait)
	}

	if err := page.Navigate(url); err != nil {
		return err
	}

	for _, wait := range waits {
		if err := wait(); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func waiterFor(page *rod.Page, cond WaitCondition) (func() error, error) {
	event, err := lifecycleEvent(cond)
	if err != nil {
		return nil, err
	}

	wait := page.WaitNavigation(event)
	return func() error {
		wait()
		return page.GetContext().Err()
	}, nil
}

func lifecycleEvent(cond WaitCondition) (proto.PageLifecycleEventName, error) {
	switch cond {
	case WaitLoad:
		return proto.PageLifecycleEventNameLoad, nil
	case WaitDOMContentLoaded:
		return proto.PageLifecycleEventNameDOMContentLoaded, nil
	case WaitNetworkIdle0:
		return proto.PageLifecycleEventNameNetworkIdle, nil
	case WaitNetworkIdle2:
		return proto.PageLifecycleEventNameNetworkAlmostIdle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedWaitCondition, cond)
	}
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string) error {
	_, err := p.page.Context(ctx).Element(selector)
	return err
}

func (p *rodPage) Content(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	return p.page.Close()
}
