package auth

// Session holds the JWT tokens issued for an authorized account. The access
// token authenticates REST and broker traffic, the refresh token buys new
// sessions without re-entering credentials, and the identity token carries
// the account's OIDC claims.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
}
