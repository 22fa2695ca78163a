// Package storage holds the photo storage backends.
package storage

import (
	"fmt"
	"time"
)

// PhotoName derives a file name from a nanosecond timestamp and the extension.
func PhotoName(ext string) string {
	return fmt.Sprintf("user-%d%s", time.Now().UnixNano(), ext)
}
