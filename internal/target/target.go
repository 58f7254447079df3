// Package target resolves object URLs such as gs://bucket/path/file into a
// utils.TransferTarget.
package target

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tanq16/slicer/internal/utils"
)

// Parse resolves rawURL into a target. An empty filename defaults to the last
// element of the object path.
func Parse(rawURL, filename string) (utils.TransferTarget, error) {
	fail := func(format string, args ...any) (utils.TransferTarget, error) {
		return utils.TransferTarget{}, utils.NewError(utils.ErrAddressResolution, "parse "+rawURL, fmt.Errorf(format, args...))
	}

	protocol, rest, found := strings.Cut(strings.TrimSpace(rawURL), "://")
	if !found || protocol == "" {
		return fail("missing protocol, expected one of %s", strings.Join(utils.SupportedProtocols, ", "))
	}
	protocol = strings.ToLower(protocol)
	if !slices.Contains(utils.SupportedProtocols, protocol) {
		return fail("unsupported protocol %q", protocol)
	}
	bucket, objectPath, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return fail("missing bucket")
	}
	if objectPath == "" || strings.HasSuffix(objectPath, "/") {
		return fail("missing object path")
	}
	if filename == "" {
		filename = utils.BaseName(objectPath)
	}
	return utils.TransferTarget{
		Protocol: protocol,
		Bucket:   bucket,
		Path:     objectPath,
		Filename: filename,
	}, nil
}
