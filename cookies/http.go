package cookies

import "net/http"

// HTTPCookies adapts a net/http request/response pair to the Cookies
// interface. Reads come from the request, writes go out as Set-Cookie
// headers on the response.
type HTTPCookies struct {
	req *http.Request
	w   http.ResponseWriter
}

var _ Cookies = (*HTTPCookies)(nil)

func NewHTTPCookies(w http.ResponseWriter, req *http.Request) *HTTPCookies {
	return &HTTPCookies{req: req, w: w}
}

func (c *HTTPCookies) Set(name, value string, options Options) error {
	sameSite := http.SameSiteLaxMode
	if options.SameSite == SameSiteStrict {
		sameSite = http.SameSiteStrictMode
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  options.Expires,
		Secure:   options.Secure,
		HttpOnly: options.HTTPOnly,
		SameSite: sameSite,
	})
	return nil
}

func (c *HTTPCookies) Get(name string) *Cookie {
	cookie, err := c.req.Cookie(name)
	if err != nil {
		return nil
	}
	return &Cookie{Name: cookie.Name, Value: cookie.Value}
}

func (c *HTTPCookies) Delete(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
