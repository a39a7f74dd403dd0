package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	IdempotencyHeader     = "Idempotency-Key"
	IdempotencyReplayed   = "Idempotent-Replayed"
	idempotencySweepEvery = 10 * time.Minute
)

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	ExpiresAt  time.Time
}

// InMemoryIdempotencyStore keeps responses for ttl. A background sweep drops
// expired entries; Get also ignores them so the sweep interval only bounds
// memory, not correctness.
type InMemoryIdempotencyStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*CachedResponse

	stop     chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*CachedResponse),
		stop:    make(chan struct{}),
	}
	go s.sweep(idempotencySweepEvery)
	return s
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(resp.ExpiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return resp, true
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.mu.Lock()
	response.ExpiresAt = s.now().Add(s.ttl)
	s.entries[key] = response
	s.mu.Unlock()
}

func (s *InMemoryIdempotencyStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for key, resp := range s.entries {
				if !now.Before(resp.ExpiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// bufferedResponse holds a handler's output until the idempotency layer
// decides who receives it.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) flush(w http.ResponseWriter) {
	copyHeader(w.Header(), b.header)
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}

func copyHeader(dst, src http.Header) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}

// Idempotency runs a keyed write once. Concurrent retries with the same key
// wait for the first attempt and receive its response; later retries get the
// stored copy as long as the first attempt succeeded. Keys are scoped to the
// caller's credentials and the route.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}
	var inflight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			scoped := scopedIdempotencyKey(r, key)
			if cached, ok := store.Get(scoped); ok {
				writeCached(w, cached, true)
				return
			}

			ran := false
			v, _, _ := inflight.Do(scoped, func() (any, error) {
				ran = true
				buf := &bufferedResponse{header: make(http.Header)}
				next.ServeHTTP(buf, r)
				if buf.status == 0 {
					buf.status = http.StatusOK
				}
				resp := &CachedResponse{
					StatusCode: buf.status,
					Headers:    buf.header,
					Body:       buf.body.Bytes(),
				}
				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					store.Set(scoped, resp)
				}
				return resp, nil
			})
			writeCached(w, v.(*CachedResponse), !ran)
		})
	}
}

func scopedIdempotencyKey(r *http.Request, key string) string {
	h := sha256.New()
	for _, part := range []string{r.Header.Get("Authorization"), r.Method, r.URL.Path, key} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeCached(w http.ResponseWriter, resp *CachedResponse, replayed bool) {
	copyHeader(w.Header(), resp.Headers)
	if replayed {
		w.Header().Set(IdempotencyReplayed, "true")
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
