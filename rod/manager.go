package rod

import (
	"sync"

	"github.com/fwojciec/harvest"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of pages a browser renders before it is
// replaced. Chrome's memory baseline creeps up under load and never drops
// back, even when every page is closed.
const DefaultMaxPages = 75

// session is one launched browser and the pages it has served.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int64
	active   int
	retired  bool
}

// close shuts the browser down and kills its process.
func (s *session) close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// BrowserManager hands out a shared headless browser and replaces it after
// a fixed number of pages. A replaced browser stays open until the last
// page acquired from it is released, so concurrent fetches never lose
// their browser mid-render.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	maxPages  int64
	bin       string
	noSandbox bool

	mu       sync.Mutex
	current  *session
	launches int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser serves before it is replaced.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBin uses the Chrome binary at path instead of looking one up or
// downloading it.
func WithBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, which containers running as
// root require.
func WithNoSandbox() ManagerOption {
	return func(bm *BrowserManager) {
		bm.noSandbox = true
	}
}

// NewBrowserManager launches the first browser. Close must be called when
// the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	s, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.current = s
	return bm, nil
}

// Acquire returns the browser to render one page on and a release func
// that must be called once the page is closed. When the current browser
// has served its quota a fresh one is launched; if that launch fails the
// old browser keeps serving.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "browser manager is closed")
	}

	if bm.maxPages > 0 && bm.current.served >= bm.maxPages {
		if fresh, err := bm.launch(); err == nil {
			bm.retire(bm.current)
			bm.current = fresh
		}
	}

	s := bm.current
	s.served++
	s.active++

	var once sync.Once
	release := func() {
		once.Do(func() {
			bm.mu.Lock()
			defer bm.mu.Unlock()
			s.active--
			if s.retired && s.active == 0 {
				_ = s.close()
			}
		})
	}
	return s.browser, release, nil
}

// Launches reports how many browsers have been started.
func (bm *BrowserManager) Launches() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.launches
}

// Close shuts down the current browser. Pages still in flight fail. Close
// is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.current.close()
}

// LauncherPID returns the process ID of the current browser launcher.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.current.launcher.PID()
}

// retire marks s as replaced, closing it now if no page uses it.
// Must be called with mu held.
func (bm *BrowserManager) retire(s *session) {
	s.retired = true
	if s.active == 0 {
		_ = s.close()
	}
}

// launch starts a browser with flags that keep background pages from
// being throttled. Must be called with mu held, or before bm is shared.
func (bm *BrowserManager) launch() (*session, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true).
		NoSandbox(bm.noSandbox)
	if bm.bin != "" {
		l = l.Bin(bm.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "launch browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "connect to browser: %v", err)
	}

	bm.launches++
	return &session{browser: browser, launcher: l}, nil
}
