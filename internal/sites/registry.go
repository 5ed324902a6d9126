package sites

import "sync"

var (
	registry []Site
	mu       sync.RWMutex
)

// Register adds a site plugin to the registry. Plugins are consulted in
// registration order.
func Register(s Site) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, s)
}

// ForURL returns the first registered site that recognizes the URL,
// together with the canonical story URL it normalized it to.
func ForURL(rawURL string) (Site, string, bool) {
	mu.RLock()
	defer mu.RUnlock()

	for _, s := range registry {
		if canonical, ok := s.Match(rawURL); ok {
			return s, canonical, true
		}
	}
	return nil, "", false
}

// All returns a copy of the registered plugins in registration order.
func All() []Site {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Site, len(registry))
	copy(out, registry)
	return out
}
