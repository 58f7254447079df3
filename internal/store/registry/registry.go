// Package registry maps a URL protocol to the store backend serving it.
package registry

import (
	"fmt"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/store/gcsstore"
	"github.com/tanq16/slicer/internal/store/miniostore"
	"github.com/tanq16/slicer/internal/store/s3store"
	"github.com/tanq16/slicer/internal/utils"
)

type constructor func(utils.BackendConfig, store.Options) store.Factory

var backends = map[string]constructor{
	"gs":    gcsstore.Factory,
	"s3":    s3store.Factory,
	"minio": miniostore.Factory,
}

// Resolve returns the store factory for protocol.
func Resolve(protocol string, cfg utils.BackendConfig, opts store.Options) (store.Factory, error) {
	build, ok := backends[protocol]
	if !ok {
		return nil, utils.NewError(utils.ErrAddressResolution, "registry/resolve", fmt.Errorf("no backend for protocol %q", protocol))
	}
	return build(cfg, opts), nil
}
