package chromedp_renderer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/internal/repository"
	"github.com/user/headline-service/pkg/metrics"
)

const (
	viewportWidth  = 1200
	viewportHeight = 800

	defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36`
)

// Options configures the renderer.
type Options struct {
	MaxConcurrency  int
	PageLoadTimeout time.Duration
	UserAgent       string
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// ChromedpRenderer opens every page in its own headless browser. Browsers
// are never reused between requests.
type ChromedpRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	sem         *semaphore.Weighted
	timeout     time.Duration
	logger      *zap.Logger
}

// NewChromedpRenderer creates a renderer backed by a local Chrome.
func NewChromedpRenderer(opts Options, logger *zap.Logger) *ChromedpRenderer {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	return &ChromedpRenderer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		sem:         semaphore.NewWeighted(int64(opts.MaxConcurrency)),
		timeout:     opts.PageLoadTimeout,
		logger:      logger,
	}
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
		chromedp.UserAgent(ua),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return allocOpts
}

// Open renders url and captures its DOM. The browser stays open until the
// returned session is closed.
func (r *ChromedpRenderer) Open(ctx context.Context, url string, policy repository.WaitPolicy) (repository.Session, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, classifyError(url, err)
	}
	metrics.BrowserSessionsInUse.Inc()

	browserCtx, cancelBrowser := chromedp.NewContext(r.allocCtx)
	// The allocator is detached from the request, so cancellation of ctx has
	// to be forwarded by hand.
	stopForward := context.AfterFunc(ctx, cancelBrowser)
	taskCtx, cancelTask := context.WithTimeout(browserCtx, r.timeout)

	var once sync.Once
	release := func() {
		once.Do(func() {
			cancelTask()
			stopForward()
			if err := chromedp.Cancel(browserCtx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Debug("Closing browser failed", zap.String("url", url), zap.Error(err))
			}
			cancelBrowser()
			metrics.BrowserSessionsInUse.Dec()
			r.sem.Release(1)
		})
	}

	var status atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	start := time.Now()
	var location, html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1, false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(policy.Settle),
		settleMarker(policy),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			err = eris.Wrap(context.DeadlineExceeded, err.Error())
		}
		release()
		return nil, classifyError(url, err)
	}

	doc, err := dom.ParseString(html, location)
	if err != nil {
		release()
		return nil, eris.Wrapf(repository.ErrNavigationFailed, "snapshot %s: %v", url, err)
	}

	r.logger.Info("Rendered page",
		zap.String("url", url),
		zap.String("location", location),
		zap.Int64("status", status.Load()),
		zap.Int("html_bytes", len(html)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &session{doc: doc, html: html, release: release}, nil
}

// Close shuts down the allocator and any browser still running.
func (r *ChromedpRenderer) Close() {
	r.allocCancel()
}

// settleMarker scrolls one viewport and waits again when the marker has not
// rendered yet.
func settleMarker(policy repository.WaitPolicy) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if policy.Marker == "" {
			return nil
		}
		var present bool
		if err := chromedp.Evaluate(markerScript(policy.Marker), &present).Do(ctx); err != nil {
			return err
		}
		if present {
			return nil
		}
		if err := chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil).Do(ctx); err != nil {
			return err
		}
		return chromedp.Sleep(policy.Resettle).Do(ctx)
	})
}

func markerScript(selector string) string {
	quoted, _ := json.Marshal(selector)
	return "!!document.querySelector(" + string(quoted) + ")"
}

// classifyError maps a browser failure onto the renderer error taxonomy,
// keeping the cause in the message.
func classifyError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return eris.Wrapf(repository.ErrRenderTimeout, "navigate %s: %v", url, err)
	}
	return eris.Wrapf(repository.ErrNavigationFailed, "navigate %s: %v", url, err)
}

type session struct {
	doc     *dom.Snapshot
	html    string
	release func()
}

func (s *session) Document() dom.Document { return s.doc }

func (s *session) HTML() string { return s.html }

func (s *session) Close() error {
	s.release()
	return nil
}
