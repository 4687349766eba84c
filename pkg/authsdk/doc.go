/*
Package authsdk is the account side of the quill client: logging in with a
username and password, fetching user records, and logging out.

It sits on top of two authhttp clients and a session.Store:

  - the login client carries the password exchange, which never goes through
    expiry recovery since a 401 there means wrong credentials
  - the API client carries everything else and renews an expired credential
    once per request

	sdk := authsdk.NewSDKClient(loginClient, apiClient, sess)

	user, err := sdk.LoginWithPassword(ctx, "alice", "secret")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong username or password
	}

	profile, err := sdk.Profile(ctx, "bob")

	// Logout always clears the local session, even when the server call fails.
	err = sdk.Logout(ctx)

# Error Handling

Non-2xx responses surface as *authhttp.APIError. The SDK adds
ErrInvalidCredentials for a refused login and ErrMissingAccessToken for a
login response without a token; both wrap the underlying error.
*/
package authsdk
