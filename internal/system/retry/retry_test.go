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

package retry

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("error")
	os.Exit(m.Run())
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {

	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 5, MaxElapsed: 10 * time.Second}, func() error {
		attempts++
		if attempts < 3 {
			return Transient(errors.New("upstream hiccup"))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {

	permanent := errors.New("invalid credentials")
	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 5, MaxElapsed: 10 * time.Second}, func() error {
		attempts++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts, "platform rejections must not be retried")
}

func TestDoExhaustsAttemptBudget(t *testing.T) {

	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, MaxElapsed: 30 * time.Second}, func() error {
		attempts++
		return Transient(errors.New("still down"))
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Policy{MaxAttempts: 5, MaxElapsed: 10 * time.Second}, func() error {
		return Transient(errors.New("never succeeds"))
	})
	assert.Error(t, err)
}

func TestRetryableStatus(t *testing.T) {

	assert.True(t, RetryableStatus(http.StatusTooManyRequests))
	assert.True(t, RetryableStatus(http.StatusInternalServerError))
	assert.True(t, RetryableStatus(http.StatusBadGateway))
	assert.False(t, RetryableStatus(http.StatusUnauthorized))
	assert.False(t, RetryableStatus(http.StatusUnprocessableEntity))
	assert.False(t, RetryableStatus(http.StatusOK))
}

func TestTransientUnwraps(t *testing.T) {

	cause := errors.New("boom")
	assert.ErrorIs(t, Transient(cause), cause)
	assert.Nil(t, Transient(nil))
}
