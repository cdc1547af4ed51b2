// Package acl is the anti-corruption layer in front of the quote API. Quote
// API JSON stops here; only validated domain.Quote values and
// *domain.RemoteError failures leave the package.
//
// A response goes through three steps:
//
//	ParseEnvelope   {success, data, message} read with gjson
//	Decode          data unmarshalled into a DTO and its validate tags checked
//	translateQuote  DTO to domain.Quote, including timestamp parsing
//
// Failures keep their HTTP status when there was one. A network failure, a
// timeout and an open circuit carry no status. Every remote error unwraps
// to domain.ErrUnavailable, domain.ErrNotFound or domain.ErrValidation.
package acl
