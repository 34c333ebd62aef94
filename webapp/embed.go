// Package webapp provides the embedded templates and static files of the
// dashboard.
package webapp

import "embed"

//go:embed templates static
var Assets embed.FS
