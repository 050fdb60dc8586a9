// Package httputil holds the HTTP plumbing shared by reference-data clients.
//
//   - [Cache]: JSON entries on disk with a time-to-live
//   - [Retry]: bounded retries with doubling delay for transient failures
//   - [Client]: a JSON GET client combining both
//
// Lookup providers (buyers, campaigns) are read far more often than they
// change, so responses are cached under ~/.cache/ivrflow/ and refreshed when
// the TTL runs out:
//
//	cache, _ := httputil.NewCache("", time.Hour)
//	c := httputil.NewClient(cache.Namespace("lookup:"), map[string]string{
//	    "Authorization": "Bearer " + token,
//	})
//	var buyers []lookup.Buyer
//	err := c.Cached(ctx, "buyers", false, &buyers, func() error {
//	    return c.Get(ctx, baseURL+"/buyers", &buyers)
//	})
//
// Only errors wrapped in [RetryableError] are retried: connection failures
// and 5xx responses. A 404 or other 4xx fails at once.
package httputil
