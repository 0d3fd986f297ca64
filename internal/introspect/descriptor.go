package introspect

import (
	"regexp"
	"strings"
)

// Descriptor files are extracted with anchored patterns rather than the
// macro reader: the two shapes of interest (the plural accessor and the
// route chain) are flat and regular in generated code.
var (
	pluralRe = regexp.MustCompile(`fn plural\(&self\)\s*->\s*&str\s*\{\s*"(\w+)"`)
	routeRe  = regexp.MustCompile(`\.route\(\s*"(/[^"]+)"\s*,\s*((?:[^()]*\([^()]*\))+)`)
	methodRe = regexp.MustCompile(`(get|post|put|delete)\((\w+)\)`)
)

// ParseDescriptor extracts the plural form and the REST routes from a
// descriptor.rs. A descriptor without a plural accessor yields an empty
// plural (the caller keeps the derived default); a descriptor without
// routes yields an empty route list. Route order follows declaration
// order, and chained method calls on one path expand to one RouteRecord
// each.
func ParseDescriptor(content string) (string, []RouteRecord) {
	plural := ""
	if m := pluralRe.FindStringSubmatch(content); m != nil {
		plural = m[1]
	}

	var routes []RouteRecord
	for _, rm := range routeRe.FindAllStringSubmatch(content, -1) {
		path := rm[1]
		for _, mm := range methodRe.FindAllStringSubmatch(rm[2], -1) {
			routes = append(routes, RouteRecord{
				Method:  strings.ToUpper(mm[1]),
				Path:    path,
				Summary: mm[2],
			})
		}
	}

	return plural, routes
}
