package utils

import (
	"net/url"
	"strings"
)

// IsAdminRoute reports whether a storefront URL addresses the admin
// back-office: path /admin, fragment #admin, or query page=admin.
func IsAdminRoute(path string, query url.Values, fragment string) bool {
	if strings.TrimSuffix(path, "/") == "/admin" {
		return true
	}
	if strings.TrimPrefix(fragment, "#") == "admin" {
		return true
	}
	return query.Get("page") == "admin"
}
