package common

// AuthHeaderName is the HTTP header used to carry the bearer token on
// outbound requests to the backend API.
const AuthHeaderName = "Authorization"

// AuthScheme is the credential scheme prefix for AuthHeaderName values.
const AuthScheme = "Bearer"
