/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package ratelimit throttles outbound calls per external platform using a
// token bucket sized from the platform's published rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Registry hands out one limiter per source so concurrent runs against
// different platforms do not share a bucket.
type Registry struct {
	limiters map[string]*rate.Limiter
	mutex    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Limiter returns the limiter for the named source, creating it with the
// given rate on first use. A non-positive rate means unthrottled.
func (r *Registry) Limiter(source string, requestsPerSecond float64) *rate.Limiter {

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if limiter, ok := r.limiters[source]; ok {
		return limiter
	}

	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	limiter := rate.NewLimiter(limit, burst)
	r.limiters[source] = limiter
	return limiter
}

// Wait blocks until the named source has a request slot or the context ends.
func (r *Registry) Wait(ctx context.Context, source string, requestsPerSecond float64) error {

	return r.Limiter(source, requestsPerSecond).Wait(ctx)
}
