package console

import "net/http"

// CredentialSource attaches the current credential to an outbound request.
// Two deployment modes exist: bearer tokens carried in the Authorization
// header, and cookie sessions where the HTTP client's jar carries the
// credential and only an XSRF header is attached here.
type CredentialSource interface {
	Attach(req *http.Request, session Session)
}

// BearerCredentials attaches the session's access token as a bearer token.
type BearerCredentials struct{}

func (BearerCredentials) Attach(req *http.Request, session Session) {
	if session.Tokens.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+session.Tokens.AccessToken)
	}
}

// CookieCredentials relies on the client's cookie jar for the auth cookie and
// attaches the anti-forgery token when one is available.
type CookieCredentials struct {
	// XSRFToken returns the current anti-forgery token, or "" for none.
	XSRFToken func() string
}

func (c CookieCredentials) Attach(req *http.Request, _ Session) {
	if c.XSRFToken != nil {
		if token := c.XSRFToken(); token != "" {
			req.Header.Set("X-XSRF-TOKEN", token)
		}
	}
}
