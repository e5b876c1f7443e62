// Package client talks to the asap-static.site hosting API.
//
// Two endpoints are used, both POST under a configurable base URL:
//
//	/asap/upload_site   multipart: zip=<archive>, tag=<tag>
//	                    200 {"message": ..., "site_secret": ...}
//	                    4xx {"error": ..., "site_secret": ...}
//	/asap/destroy_site  JSON {"tag": ...}, Authorization: <site secret>
//	                    200 {"message": ...}
//	                    4xx {"error": ...}
//
// Failures are translated into two kinds:
//
//   - *errors.RemoteError when the server answered; it carries the server's
//     message verbatim and any site secret the server issued anyway.
//   - *errors.TransportError when no response arrived; it unwraps to the
//     original error from net/http.
//
// Connection-level failures are retried by go-retryablehttp. Responses,
// including 5xx, are never retried: an upload is not idempotent.
package client
