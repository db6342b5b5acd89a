// Package client is the calling side of classAuth: an HTTP client that
// attaches the stored credential to every request and reacts to 401s.
//
// A request interceptor reads the credential from [Storage] under
// "accessToken" and sends it as a Bearer header; with nothing stored no
// header is added. A response interceptor watches for 401: it removes the
// stored credential and navigates to "/login", or to "/" when the server
// reported the credential as expired. Every other response reaches the
// caller untouched.
//
// The interceptor chain is exposed through [Transport], so callers can wrap
// any http.Client with the same behaviour.
package client
