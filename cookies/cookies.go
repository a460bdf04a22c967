// Package cookies defines the cookie transport consumed by the auth core.
// The hosting HTTP layer supplies the implementation; HTTPCookies adapts the
// standard net/http request/response pair.
package cookies

import "time"

// SameSite is the cookie SameSite attribute. Only the two values the auth
// core issues are modelled.
type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
)

// Options are the attributes applied when a cookie is written.
type Options struct {
	Secure   bool
	HTTPOnly bool
	SameSite SameSite
	Expires  time.Time
}

// Cookie is a named short string read back from the transport.
type Cookie struct {
	Name  string
	Value string
}

// Cookies is the transport contract: get/set/delete short strings with
// expiry and security attributes.
type Cookies interface {
	Set(name, value string, options Options) error
	Get(name string) *Cookie
	Delete(name string)
}
