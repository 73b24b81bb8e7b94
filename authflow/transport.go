package authflow

import "net/http"

// headerTransport adds fixed request headers without overriding ones already set.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

func newProviderClient(base *http.Client, userAgent string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	headers := map[string]string{"Accept": "application/json"}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return &http.Client{
		Transport:     &headerTransport{base: rt, headers: headers},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}
}
