// Package client talks to the tree service.
//
// The service exposes two operations:
//
//	GET  /tree          -> {"tree": [{"value": 50, "color": "black", "parent": null}, ...]}
//	POST /tree/search   {"value": 30} -> {"searchPath": [50, 30]}
//
// [Client] implements both over HTTP with retries for transient failures.
// Every failure is reported as a TRANSPORT coded error. When a cache is
// attached, each fetched tree is stored so that [Client.CachedTree] can
// serve the last known tree while the service is down.
//
// [Source] is the interface the shells depend on. [FileSource] implements
// it over a local JSON file for offline use.
package client
