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

// Package breaker guards the webhook write path with a bounded-latency
// datastore probe. When the probe fails the caller acknowledges the webhook
// without processing it; the record is recovered by the next full sync pass.
package breaker

import (
	"context"
	"time"

	"github.com/revops/revenue-sync-service/internal/system/log"
)

// Probe checks datastore health within a latency bound.
type Probe interface {
	Check(ctx context.Context) error
}

// Breaker short-circuits processing when the probe fails or times out.
type Breaker struct {
	probe   Probe
	timeout time.Duration
}

func NewBreaker(probe Probe, timeout time.Duration) *Breaker {
	return &Breaker{
		probe:   probe,
		timeout: timeout,
	}
}

// Allow reports whether processing may proceed. A false result means the
// circuit is open and the caller must defer the work.
func (b *Breaker) Allow(ctx context.Context) bool {

	probeCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.probe.Check(probeCtx); err != nil {
		log.GetLogger().Warn("Datastore probe failed, circuit open", log.Error(err))
		return false
	}
	return true
}
