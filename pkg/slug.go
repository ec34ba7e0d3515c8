package pkg

import "github.com/gosimple/slug"

// Slugify turns a title into the lowercase, dash separated form used in URLs.
func Slugify(s string) string {
	return slug.Make(s)
}
