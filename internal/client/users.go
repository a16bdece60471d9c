package client

import (
	"context"
)

// Authenticate checks cred against the backend. It does not replace the
// credential the client holds; call SetCredential for that.
func (c *Client) Authenticate(ctx context.Context, cred Credential) (bool, error) {
	return c.callStatus(ctx, Action{Object: ObjectUsers, Verb: VerbLogin}, struct{}{}, cred)
}

// ChangeCredential replaces the held user's name and password on the
// backend. The held credential is left as is.
func (c *Client) ChangeCredential(ctx context.Context, username, password string) (bool, error) {
	return c.callStatus(ctx, Action{Object: ObjectUsers, Verb: VerbAlter},
		credentialParams{NewUsername: username, NewPassword: password}, c.Credential())
}
