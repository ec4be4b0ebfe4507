// Package httputil holds the JSON response helpers shared by the dashboard
// handlers so every endpoint answers with the same envelope and logs
// server-side failures the same way.
package httputil
