// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated, organization-scoped caller.
// Authentication itself happens at the external identity boundary; this
// abstraction only reads what AuthRequired attached to the request.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// OrgID returns the caller's organization ID.
	OrgID() uuid.UUID
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	orgID         uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID { return i.userID }
func (i *identity) OrgID() uuid.UUID  { return i.orgID }
func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	orgID, orgOK := c.Get(ContextOrgIDKey)

	if !userOK || !orgOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}
	oid, ok := orgID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	return &identity{
		userID:        uid,
		orgID:         oid,
		authenticated: true,
	}
}
