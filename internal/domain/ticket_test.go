package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "IN_PROGRESS", "ESCALATED", "AWAITING_CONFIRMATION", "CLOSED"} {
		status, err := ParseTicketStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, TicketStatus(valid), status)
	}

	for _, invalid := range []string{"", "pending", "OPEN", "DONE", "AWAITING"} {
		_, err := ParseTicketStatus(invalid)
		assert.Error(t, err, "%q should be rejected", invalid)
	}
}

func TestReferenceCode(t *testing.T) {
	assert.Equal(t, "TKK00001", (&Ticket{ID: 1}).ReferenceCode())
	assert.Equal(t, "TKK00042", (&Ticket{ID: 42}).ReferenceCode())
	assert.Equal(t, "TKK123456", (&Ticket{ID: 123456}).ReferenceCode())
}

func TestCapabilitiesForRole(t *testing.T) {
	assert.ElementsMatch(t,
		[]Capability{CapabilityAdminister, CapabilitySupervise, CapabilityTriage},
		CapabilitiesForRole(RoleAdministrator))
	assert.ElementsMatch(t,
		[]Capability{CapabilitySupervise, CapabilityTriage},
		CapabilitiesForRole(RoleSupervisor))
	assert.ElementsMatch(t,
		[]Capability{CapabilityTriage},
		CapabilitiesForRole(RoleTechnician))
	assert.Nil(t, CapabilitiesForRole("stagiaire"))
}

func TestUserHelpers(t *testing.T) {
	user := User{FirstName: "Rita", LastName: "Requester", Roles: []string{RoleTechnician}}
	assert.Equal(t, "Rita Requester", user.FullName())
	assert.True(t, user.HasRole(RoleTechnician))
	assert.False(t, user.HasRole(RoleSupervisor))
}
