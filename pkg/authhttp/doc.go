/*
Package authhttp builds the authenticated HTTP clients a quill client talks to
its backend with.

Every Client is made by New from a small Config. The two presets match the two
clients the application needs:

	api := authhttp.New(authhttp.APIConfig(baseURL), sess, opts...)     // general calls, 80s, recovers expiry
	login := authhttp.New(authhttp.LoginConfig(baseURL), sess, opts...) // credential issuance, 50s

# Request pipeline

Each request passes through, outermost first:

  - request id: sets X-Request-ID (a ULID) when the caller did not
  - rate limit: optional token bucket shared by all requests of the client
  - credential attacher: sets "Authorization: Bearer <credential>" from the
    session, read fresh on every request, unless the credential is empty or
    the placeholder "token"
  - request logging (slogx.Transport)

# Expiry recovery

When a client with RecoverExpiry gets a 401, Do runs a one-shot recovery:

	Dispatched -> Passthrough                  (any status but 401)
	Dispatched -> Recovering -> Done           (renewed, replayed once)
	Dispatched -> Recovering -> Unrecoverable  (no refresh credential, or renewal failed)

The renewal exchange is a single POST of {"refreshToken": ...} to RefreshPath
through a bare client, so a 401 from the refresh endpoint cannot start
another recovery. The replay goes through the normal pipeline minus recovery.

Only a failed renewal notifies the user and navigates to the entry route. A
missing refresh credential just returns the original error.

# Errors

Non-2xx responses come back as *APIError holding the status code and body.
When recovery was attempted and failed, APIError.Cause says why and is
reachable through errors.Is / errors.As:

	_, err := api.Do(req)
	var apiErr *authhttp.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		if errors.Is(err, authhttp.ErrNoRefreshCredential) {
			// never had a refresh credential
		}
	}

Transport errors (network, timeout) are returned unchanged and never start a
recovery.
*/
package authhttp
