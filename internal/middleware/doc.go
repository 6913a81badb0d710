// Package middleware provides HTTP middleware for the gallery server:
// request logging in W3C Extended Log Format and Prometheus request
// metrics labeled by route template.
package middleware
