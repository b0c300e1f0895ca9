// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cache

import (
	"context"
	"time"
)

type nullCache struct{}

// NewNullCache returns a Cache that keeps nothing, so every Get misses.
// It stands in when caching is disabled.
func NewNullCache() Cache {
	return nullCache{}
}

func (nullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (nullCache) Delete(context.Context, string) error {
	return nil
}

func (nullCache) Close() error {
	return nil
}
