package testutil

import "net/http"

// WithBasicAuth sets the Authorization header for HTTP Basic credentials.
func WithBasicAuth(req *http.Request, username, password string) *http.Request {
	req.SetBasicAuth(username, password)
	return req
}
