package crawl

import (
	"container/heap"
	"sync"

	"github.com/fwojciec/harvest/bloom"
)

// Target is a URL waiting to be walked.
type Target struct {
	URL   string
	Score float64 // total score of the link that led here
	Depth int     // links followed from the start page
}

// Frontier is an in-memory URL frontier with priority queue and Bloom filter deduplication.
// Higher scores pop first, then shallower targets, then earlier pushes.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *targetHeap
	seq   int
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &targetHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a target to the frontier.
// Returns false if the URL has already been seen. URLs that differ only by
// fragment, trailing slash or "www." are the same URL.
func (f *Frontier) Push(t Target) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.seen.Visit(t.URL) {
		return false
	}
	heap.Push(f.queue, queued{Target: t, seq: f.seq})
	f.seq++
	return true
}

// Pop returns the next target by priority.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return Target{}, false
	}
	q, _ := heap.Pop(f.queue).(queued)
	return q.Target, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Seen(rawURL)
}

type queued struct {
	Target
	seq int
}

// targetHeap implements heap.Interface as a max-heap on priority.
type targetHeap []queued

func (h targetHeap) Len() int { return len(h) }

func (h targetHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].seq < h[j].seq
}

func (h targetHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *targetHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *targetHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
