// Package health reports whether catalogd and its dependencies are usable.
//
// A Checker reports one component's Status. An Aggregator runs every
// registered checker concurrently under a shared timeout and combines the
// results: any unhealthy check makes the whole service unhealthy.
//
// # HTTP Endpoints
//
//	/healthz  LivenessHandler, always 200 while the process serves requests
//	/readyz   ReadinessHandler, 503 while any check is unhealthy
//	/health   DetailedHandler, per-check JSON report
package health
