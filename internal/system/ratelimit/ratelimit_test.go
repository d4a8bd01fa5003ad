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

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterIsPerSource(t *testing.T) {

	registry := NewRegistry()
	billing := registry.Limiter("billing", 5)
	crm := registry.Limiter("crm-a", 2)

	assert.NotSame(t, billing, crm)
	assert.Same(t, billing, registry.Limiter("billing", 5), "same source reuses its limiter")
}

func TestUnlimitedWhenRateUnset(t *testing.T) {

	registry := NewRegistry()
	limiter := registry.Limiter("upload", 0)
	assert.Equal(t, rate.Inf, limiter.Limit())
}

func TestWaitThrottles(t *testing.T) {

	registry := NewRegistry()
	ctx := context.Background()

	// Burst of 1 at 10 rps: the second acquisition must wait ~100ms.
	start := time.Now()
	assert.NoError(t, registry.Wait(ctx, "billing", 1))
	assert.NoError(t, registry.Wait(ctx, "billing", 1))
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitHonorsContext(t *testing.T) {

	registry := NewRegistry()
	// Drain the burst.
	assert.NoError(t, registry.Wait(context.Background(), "slow", 0.1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, registry.Wait(ctx, "slow", 0.1))
}
