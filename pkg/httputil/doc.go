// Package httputil provides HTTP helpers shared by the catalog client.
//
// [Retry] wraps requests with automatic retry for transient failures. Only
// errors wrapped in [RetryableError] are retried (network errors and 5xx
// responses); everything else is returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// [CheckStatus] maps response codes onto that policy.
package httputil
