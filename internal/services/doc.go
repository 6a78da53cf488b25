// Package services defines the [CatalogService] interface for the remote
// music catalog and implements it for the Spotify Web API.
//
// # Catalog Interface
//
// Every bulk read walks the remote pagination with [CollectPages]; every
// bulk write respects the remote per-call item limit of [MaxBatchItems].
// The interface exposes typed records ([Playlist], [Track], [Artist],
// [AudioFeatures]) so nothing above this package branches on raw JSON maps.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh via the [oauth2.Config] client.
//
// # Error Handling
//
// Remote failures surface as a wrapped [APIError], which unwraps to typed
// errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired (HTTP 401)
//   - [shared.ErrTrackNotFound] : resource not found (HTTP 404)
//   - [shared.ErrRateLimited] : remote throttling (HTTP 429)
//   - [shared.ErrAPIRequest] : any other remote failure
//
// Nothing retries. Callers decide per operation whether a partial result
// (for example, a half-walked pagination) is usable.
package services
