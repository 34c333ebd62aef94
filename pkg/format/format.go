// Package format renders sizes, dates and file kinds for display.
package format

import (
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fruitsalade/sitedeck/pkg/models"
)

// DirectorySize is shown in place of a size for directories.
const DirectorySize = "-"

const dateLayout = "Jan 2, 2006 15:04"

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders n with 1024-based units, at most two decimals with
// trailing zeros trimmed. Units stop at GB.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i, div := 0, int64(1)
	for i < len(byteUnits)-1 && n >= div*1024 {
		div *= 1024
		i++
	}
	v := float64(n) / float64(div)
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// Size returns the display size of e.
func Size(e models.FileEntry) string {
	if e.IsDirectory {
		return DirectorySize
	}
	return FormatBytes(e.Size)
}

// Date renders t in local time, or "-" when unknown.
func Date(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// Relative renders t as "3 days ago".
func Relative(t models.Timestamp) string {
	return relativeTo(t, time.Now())
}

func relativeTo(t models.Timestamp, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t.Time, now, "ago", "from now")
}

// Hits renders a hit counter with thousands separators.
func Hits(n int64) string {
	return humanize.Comma(n)
}

func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Kind classifies a file name by extension. Unknown extensions yield "".
func Kind(name string) string {
	switch ext(name) {
	case "html", "htm":
		return "html"
	case "css":
		return "css"
	case "js":
		return "js"
	case "json":
		return "json"
	case "md":
		return "md"
	case "txt":
		return "txt"
	case "png", "jpg", "jpeg", "gif", "svg", "webp":
		return "image"
	}
	return ""
}

// Icon returns the icon name for an entry.
func Icon(e models.FileEntry) string {
	if e.IsDirectory {
		return "folder"
	}
	switch ext(e.Name()) {
	case "html", "htm":
		return "code"
	case "css":
		return "palette"
	case "js":
		return "cogs"
	case "json":
		return "brackets-curly"
	case "md":
		return "markdown"
	case "txt":
		return "file-alt"
	case "png", "jpg", "jpeg", "gif", "svg", "webp":
		return "image"
	case "pdf":
		return "file-pdf"
	case "zip", "rar", "7z":
		return "file-archive"
	}
	return "file"
}
