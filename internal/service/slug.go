package service

import "regexp"

// SlugPattern is the HTML form pattern for page slugs (implicitly anchored).
const SlugPattern = `[a-z0-9]+(-[a-z0-9]+)*`

var slugRegexp = regexp.MustCompile(`^` + SlugPattern + `$`)

// ValidSlug reports whether slug is lowercase alphanumeric segments joined by single hyphens.
func ValidSlug(slug string) bool {
	return slugRegexp.MatchString(slug)
}
