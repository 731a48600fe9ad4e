// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
)

const (
	LightIndexFile = "lightidx.mul"
	LightDataFile  = "light.mul"
)

// Lights holds light payloads, each prefixed with its width and height as
// two uint32s.
type Lights struct {
	Records
}

// OpenLights loads lights from a client directory.
func OpenLights(dir string, opts ...uo.Option) (*Lights, error) {
	return OpenLightFiles(filepath.Join(dir, LightIndexFile), filepath.Join(dir, LightDataFile), opts...)
}

// OpenLightFiles loads lights from an index/data pair.
func OpenLightFiles(idxPath, mulPath string, opts ...uo.Option) (*Lights, error) {
	l := &Lights{Records: Records{}}
	if err := uo.ProcessFiles(idxPath, mulPath, lightLoader{l}, opts...); err != nil {
		return nil, fmt.Errorf("load lights: %w", err)
	}
	return l, nil
}

// Size returns the dimensions of light id.
func (l *Lights) Size(id int) (width, height int, ok bool) {
	data, found := l.Get(id)
	if !found {
		return 0, 0, false
	}
	return sizePrefix(data)
}

type lightLoader struct{ l *Lights }

func (ll lightLoader) RecordData(record, extra uint32, data []byte) error {
	ll.l.Records[int(record)] = withSizePrefix(extra, data)
	return nil
}
