// Package services defines the [Tagger] interface for the external tagging service and implements it over HTTP.
//
// # Tagger Interface
//
// The reconciliation scheduler only ever talks to a [Tagger]. It does not know which transport backs it; tests inject
// doubles and the CLI injects [HTTPTagger].
//
// # HTTP Implementation
//
// [HTTPTagger] POSTs a JSON [Request] to <base_url>/v1/tag through [APIService] and decodes a [Response].
//
// Authentication is picked from configuration:
//   - token_url set: OAuth2 client credentials via [clientcredentials.Config]
//   - api_key set: a static bearer token via [oauth2.StaticTokenSource]
//   - neither: unauthenticated
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrCollaboratorUnavailable] : no base URL configured; the whole job stops
//   - [shared.ErrAPIRequest] : non-2xx status, empty body or undecodable JSON; the scheduler retries the chunk
package services
