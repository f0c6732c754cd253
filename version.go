package dispatch

import "fmt"

// Version is the library version reported in the exposed user agent.
const Version = "1.0.0"

// UserAgent returns the identifying user-agent value set on external
// requests when Expose is enabled.
func UserAgent() string {
	return fmt.Sprintf("modseven-dispatch/%s", Version)
}
