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

// Package retry wraps transient source failures with exponential backoff and
// jitter. Platform rejections (auth/validation) are surfaced immediately so a
// failed page keeps its cursor unadvanced.
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

// TransientError marks a failure as retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err so the retry loop treats it as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// RetryableStatus reports whether an HTTP status from an external platform is
// worth retrying. 429 and 5xx are transient; other 4xx are platform rejections.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	MaxElapsed  time.Duration
}

// Do runs op until it succeeds, returns a non-transient error, or the policy
// budget is exhausted.
func Do(ctx context.Context, policy Policy, op func() error) error {

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 15 * time.Second
	expo.MaxElapsedTime = policy.MaxElapsed
	// RandomizationFactor defaults to 0.5, which supplies the jitter.

	var b backoff.BackOff = backoff.WithContext(expo, ctx)
	if policy.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))
	}

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) && !isNetworkError(err) {
			// Permanent failures stop the loop and propagate as-is.
			return backoff.Permanent(err)
		}
		log.GetLogger().Warn("Transient failure, will retry",
			log.Int("attempt", attempt), log.Error(err))
		return err
	}, b)
}

// isNetworkError classifies plain network/timeout errors as transient even
// when the caller did not wrap them.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
