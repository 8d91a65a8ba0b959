// Package search provides an HTTP client for the SnapShop search backend.
//
// # Overview
//
// The backend performs the visual search; this package only wraps the two
// calls the client makes against it and normalises their failures:
//
//   - POST /upload/: multipart form with one "file" field holding the image.
//     Returns the items matching the image.
//   - GET /items/: returns the items stored by the most recent search.
//
// Both return a JSON array of items:
//
//	[{"items_id": "…", "title": "…", "link": "https://…", "timestamp": "2024-01-01T00:00:00"}]
//
// # Client Usage
//
//	client, err := search.NewClient("http://localhost:8000", search.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	req, err := search.NewUploadRequest("/home/me/cat.jpg")
//	if err != nil {
//		// *search.ValidationError: no file, unreadable, or not an image
//	}
//	items, err := client.SubmitImage(ctx, req)
//
// # Item Identifiers
//
// "items_id" is the canonical identifier field. Payloads that only carry the
// older "id" field still decode, but each such item has LegacyID set and the
// client logs a warning so the backend can be migrated.
//
// # Error Handling
//
//   - *ValidationError: the upload was rejected locally, before any request.
//     Its cause is ErrNoFile when no file was selected.
//   - *TransportError: network failure, non-2xx status, or an undecodable
//     body. Carries the endpoint, status code and the X-Request-ID sent with
//     the request. Never accompanied by partial results.
//
// SubmitImage is not idempotent and is never retried. Every request is logged
// with its request id, status and duration.
package search
