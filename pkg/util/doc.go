// Package util provides small helpers shared by the transport and the proxy.
//
//   - TruncateBody caps response bodies for safe logging
//   - HeaderNames lists header names in a stable order for log attributes
package util
