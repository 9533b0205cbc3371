/*
Package scribesdk provides a client SDK for the scribe identity and workspace
service.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (register, login, password reset,
    health) and creation of authenticated sessions
  - Session: authenticated operations with automatic token refresh

	client := scribesdk.NewSDKClient("https://api.example.com")

	reg, err := client.Register(ctx, scribesdk.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "correct horse",
	})

	session, err := client.AuthenticateWithPassword(ctx, "alice@example.com", "correct horse")

	me, err := session.Me(ctx)
	ws, err := session.CreateWorkspace(ctx, scribesdk.CreateWorkspaceRequest{Name: "Acme", Type: "team"})
	_, err = session.InviteMember(ctx, ws.ID, scribesdk.InviteRequest{Email: "carol@example.com", Role: "writer"})

# Automatic Token Refresh

Session methods refresh the access token through /v1/auth/refresh 30 seconds
before it expires. The refresh token itself is not rotated; once it is gone
or rejected calls fail, with ErrSessionExpired when none was held.

# Error Handling

Non-2xx responses are returned as *APIError. The predefined errors compare
by code, so callers can write:

	if errors.Is(err, scribesdk.ErrForbidden) {
		// ...
	}

# Thread Safety

Sessions are safe for concurrent use.
*/
package scribesdk
