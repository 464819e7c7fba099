package utils

import "strings"

// APIVersionSegment sits between the proxy base URL and every provider endpoint.
const APIVersionSegment = "/v1/"

// BuildURL joins base and endpoint under the versioned segment. One trailing
// slash on base and one leading slash on endpoint are ignored.
func BuildURL(base, endpoint string) string {
	return strings.TrimSuffix(base, "/") + APIVersionSegment + strings.TrimPrefix(endpoint, "/")
}

// JoinPath joins base and path with exactly one slash and no version segment.
func JoinPath(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
