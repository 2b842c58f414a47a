package model

import "strings"

const (
	RoleRequester  = "requester"
	RoleBuyer      = "buyer"
	RoleStorekeep  = "storekeeper"
	RoleApprover   = "approver"
	RoleAdmin      = "admin"
	anonymousActor = "anonymous"
)

// Principal identifies who performed an action. It only attributes history entries.
type Principal struct {
	Subject string
	Name    string
	Role    string
}

func (p Principal) Actor() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if sub := strings.TrimSpace(p.Subject); sub != "" {
		return sub
	}
	return anonymousActor
}

func (p Principal) IsAnonymous() bool {
	return p.Actor() == anonymousActor
}
