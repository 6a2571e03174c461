// Package jwt issues and verifies the HS256 tokens that identify users on the
// notification endpoints.
//
// Tokens carry the user id in the "sub" claim and the app role in "role".
// Middleware verifies the token, rejects anything that is not HS256, and
// stores the claims in the request context for ClaimsFromContext.
//
//	svc, err := jwt.NewFromConfig(cfg)
//	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
//	    Service:   svc,
//	    Extractor: jwt.FirstOf(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("token")),
//	}))
package jwt
