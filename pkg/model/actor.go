package model

type ActorRole string

const (
	RoleClient ActorRole = "client"
	RoleAdmin  ActorRole = "admin"
)

// Actor is the caller identity as asserted by the gateway.
type Actor struct {
	Role     ActorRole
	ClientID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func AdminActor() Actor {
	return Actor{Role: RoleAdmin}
}

func ClientActor(clientID string) Actor {
	return Actor{Role: RoleClient, ClientID: clientID}
}
