// Package acl implements the Anti-Corruption Layer for external services.
//
// ACL adapters translate between external API models and domain models:
// external DTOs never leave this package, and transport failures are mapped
// to domain errors before they reach the application layer.
//
// # Adapters
//
//   - [GenderizeClient]: name-to-gender lookups against genderize.io,
//     implementing ports.GenderLookup.
//
// # Error Mapping
//
// [MapHTTPError] converts client failures (open circuit, exhausted retries)
// and non-2xx responses into domain errors:
//
//	| Source                    | Domain error          |
//	|---------------------------|-----------------------|
//	| circuit open              | domain.ErrUnavailable |
//	| 429 (holds the circuit)   | domain.ErrUnavailable |
//	| retries exhausted         | domain.ErrUnavailable |
//	| 404                       | domain.ErrNotFound    |
//	| 401, 402, 403             | domain.ErrUnavailable |
package acl
