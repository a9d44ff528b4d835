// internal/app/system/limits/limits.go
package limits

// Request body size limits shared across the API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxPortraitSize is the maximum size for uploaded member portraits.
	// Multipart framing overhead is allowed on top of this.
	MaxPortraitSize = 5 << 20 // 5 MB
)
