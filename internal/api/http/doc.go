// Package http exposes the package registry over a JSON API.
//
// View endpoints accept three query parameters:
//
//	flags  numeric flag word or comma separated names (meta_data,signatures)
//	user   user id, defaulting to the configured default user
//	pid    calling process id, which selects the 64-bit projection
//
// A pid only counts as a virtual app process once it has been registered
// with PUT /processes/:pid.
//
// Install requests carry a YAML or JSON manifest as the request body.
package http
