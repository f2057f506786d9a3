package geo

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// geolocationScript wraps getCurrentPosition in a Promise so Evaluate can
// await it. %d is the timeout in milliseconds.
const geolocationScript = `new Promise((resolve, reject) => {
	if (!navigator.geolocation) {
		reject(new Error("geolocation API not available"));
		return;
	}
	navigator.geolocation.getCurrentPosition(
		(p) => resolve({latitude: p.coords.latitude, longitude: p.coords.longitude, accuracy: p.coords.accuracy}),
		(e) => reject(new Error(e.message || "position unavailable")),
		{enableHighAccuracy: true, timeout: %d, maximumAge: 0}
	);
})`

// BrowserLocator reads the position through a headless Chrome.
//
// The browser is started lazily on the first Locate and reused until
// Close. If a device position is configured it is injected with
// Emulation.setGeolocationOverride, which is how a fixed kiosk or a test
// rig reports where it stands.
//
// Thread-safety:
//   - Locate calls are serialized; the browser has a single tab
type BrowserLocator struct {
	mu       sync.Mutex
	ctx      context.Context    // Current browser tab context
	cancel   context.CancelFunc // Cancels tab and allocator
	override *Position
	timeout  time.Duration
}

// NewBrowserLocator creates a locator.
//
// Parameters:
//   - override: position fed to the browser, nil to use whatever the
//     browser reports on its own
//   - timeout: upper bound for one Locate call
func NewBrowserLocator(override *Position, timeout time.Duration) *BrowserLocator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BrowserLocator{override: override, timeout: timeout}
}

// Locate starts the browser if needed, grants the geolocation permission
// and evaluates navigator.geolocation.getCurrentPosition.
//
// A failed evaluation restarts the browser on the next call.
func (l *BrowserLocator) Locate(ctx context.Context) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tab, err := l.tab()
	if err != nil {
		return Position{}, err
	}

	runCtx, cancel := context.WithTimeout(tab, l.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{
		browser.GrantPermissions([]browser.PermissionType{browser.PermissionTypeGeolocation}),
	}
	if l.override != nil {
		actions = append(actions, emulation.SetGeolocationOverride().
			WithLatitude(l.override.Latitude).
			WithLongitude(l.override.Longitude).
			WithAccuracy(maxFloat(l.override.Accuracy, 1)))
	}

	var pos Position
	script := fmt.Sprintf(geolocationScript, l.timeout.Milliseconds())
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(script, &pos, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)

	log.Println("  → Requesting device position from browser...")
	if err := chromedp.Run(runCtx, actions...); err != nil {
		l.reset()
		if ctx.Err() != nil {
			return Position{}, ctx.Err()
		}
		return Position{}, fmt.Errorf("browser geolocation: %w", err)
	}
	if !pos.Valid() {
		return Position{}, fmt.Errorf("browser geolocation: invalid position %v", pos)
	}

	log.Printf("  ✓ Device position %s\n", pos)
	return pos, nil
}

// Close shuts the browser down.
func (l *BrowserLocator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

// tab returns the browser tab context, starting Chrome if needed. The
// browser is started with an empty Run so its lifetime is bound to the
// tab context rather than to a per-call timeout.
// Caller holds l.mu.
func (l *BrowserLocator) tab() (context.Context, error) {
	if l.ctx != nil {
		return l.ctx, nil
	}

	log.Println("  → Creating new browser context...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("use-fake-ui-for-media-stream", true),
		)...,
	)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		log.Println("  ✗ Failed to start browser:", err)
		return nil, fmt.Errorf("start browser: %w", err)
	}

	l.ctx = tabCtx
	l.cancel = func() {
		tabCancel()
		allocCancel()
	}
	log.Println("  ✓ Browser context created successfully")
	return l.ctx, nil
}

// reset cancels the current browser so the next call starts fresh.
// Caller holds l.mu.
func (l *BrowserLocator) reset() {
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx = nil
	l.cancel = nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
