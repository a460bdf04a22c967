package cookiesfakes

import (
	"sync"
	"time"

	"github.com/accessregistry/go-registry-auth/cookies"
)

var _ cookies.Cookies = (*FakeCookies)(nil)

// FakeCookies is an in-memory cookie jar for tests. It honours cookie
// expiry against an injectable clock so handshake-timeout behaviour can be
// exercised without sleeping.
type FakeCookies struct {
	NowTime func() time.Time

	jar  map[string]entry
	lock sync.Mutex
}

type entry struct {
	value   string
	options cookies.Options
}

func NewFakeCookies() *FakeCookies {
	return &FakeCookies{
		NowTime: time.Now,
		jar:     make(map[string]entry),
	}
}

func (f *FakeCookies) Set(name, value string, options cookies.Options) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.jar[name] = entry{value: value, options: options}
	return nil
}

func (f *FakeCookies) Get(name string) *cookies.Cookie {
	f.lock.Lock()
	defer f.lock.Unlock()

	e, ok := f.jar[name]
	if !ok {
		return nil
	}
	if !e.options.Expires.IsZero() && !e.options.Expires.After(f.NowTime()) {
		return nil
	}
	return &cookies.Cookie{Name: name, Value: e.value}
}

func (f *FakeCookies) Delete(name string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.jar, name)
}

// Options returns the attributes the named cookie was last written with, so
// tests can assert on flags and expiry.
func (f *FakeCookies) Options(name string) (cookies.Options, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	e, ok := f.jar[name]
	return e.options, ok
}
