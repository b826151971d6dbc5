package engine

// HeaderProfile is one realistic browser signature sent with a request.
type HeaderProfile struct {
	Name    string
	Headers map[string]string
}

// ProfileProvider maps a call counter to a header profile. Implementations
// must be pure: the same n always yields the same profile.
type ProfileProvider interface {
	Profile(n uint64) HeaderProfile
}

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9,es;q=0.8"
)

// DefaultProfiles is the rotation pool used when none is configured.
var DefaultProfiles = []HeaderProfile{
	chromeProfile("chrome-windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	chromeProfile("chrome-macos", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	chromeProfile("chrome-linux", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	firefoxProfile("firefox-windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"),
	firefoxProfile("firefox-macos", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0"),
}

func chromeProfile(name, ua string) HeaderProfile {
	return HeaderProfile{
		Name: name,
		Headers: map[string]string{
			"User-Agent":                ua,
			"Accept":                    acceptHTML,
			"Accept-Language":           acceptLanguage,
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Cache-Control":             "max-age=0",
		},
	}
}

func firefoxProfile(name, ua string) HeaderProfile {
	return HeaderProfile{
		Name: name,
		Headers: map[string]string{
			"User-Agent":                ua,
			"Accept":                    acceptHTML,
			"Accept-Language":           acceptLanguage,
			"Upgrade-Insecure-Requests": "1",
			"DNT":                       "1",
		},
	}
}

// SeededProfiles picks pseudo-randomly from a fixed pool. The choice is a
// hash of (seed, n), so a given seed replays the same sequence.
type SeededProfiles struct {
	seed uint64
	pool []HeaderProfile
}

// NewSeededProfiles creates a provider over pool (DefaultProfiles if empty).
func NewSeededProfiles(seed int64, pool []HeaderProfile) *SeededProfiles {
	if len(pool) == 0 {
		pool = DefaultProfiles
	}
	return &SeededProfiles{seed: uint64(seed), pool: pool}
}

// Profile returns a copy of the profile selected for call n.
func (p *SeededProfiles) Profile(n uint64) HeaderProfile {
	chosen := p.pool[splitmix64(p.seed+n)%uint64(len(p.pool))]
	headers := make(map[string]string, len(chosen.Headers))
	for k, v := range chosen.Headers {
		headers[k] = v
	}
	return HeaderProfile{Name: chosen.Name, Headers: headers}
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
