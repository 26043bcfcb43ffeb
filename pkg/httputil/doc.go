// Package httputil provides HTTP helpers for the tree service client.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff while it fails with
// a [RetryableError]. Wrap transient failures with [Retryable]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// [CheckStatus] applies that classification to a response, so a request
// loop reads:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    if err := httputil.CheckStatus(resp); err != nil {
//	        return err
//	    }
//	    return decode(resp.Body)
//	})
package httputil
