/*
Package session owns the client's single identity/credential state.

A Store is opened once per running client from durable storage and handed to
every collaborator that needs it: the credential attacher and the expiry
recovery coordinator in authhttp, and the auth guard in router. Only Store
methods mutate it.

# Logged in

A client is logged in when it holds a non-empty credential and no logout has
happened since the last login in the current process. The logout flag lives
in session-scoped storage, not durable storage, so a stale credential that
survived in durable storage cannot resurrect a session the user ended:

	s, _ := session.Open(ctx, durable, storage.NewMemory())
	_ = s.Login(ctx, "alice", "tok123", "/a.png")
	s.IsLoggedIn() // true
	_ = s.Logout(ctx)
	s.IsLoggedIn() // false

# Logout cleanup

Logout removes every key in the session key registry (the four well-known keys
plus anything added with Register) and then, unless disabled, sweeps durable
keys whose names contain one of the legacy substrings. The sweep is fuzzy by
nature; prefer Register for new keys.
*/
package session
