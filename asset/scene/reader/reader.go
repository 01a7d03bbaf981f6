package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/wbvh/asset"
	"github.com/achilleasa/wbvh/asset/compiler/input"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene geometry from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// Read scene geometry from a local file or an http(s) URL.
func ReadScene(filename string) (*input.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".obj") {
		reader = newWavefrontReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
