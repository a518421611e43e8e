// AngelaMos | 2026
// rules_test.go

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anon      = Anonymous()
	plainUser = Actor{ID: "u1", Username: "reader", Role: RoleUser, Authenticated: true}
	moderator = Actor{ID: "m1", Username: "mod", Role: RoleModerator, Authenticated: true}
	adminUser = Actor{ID: "a1", Username: "boss", Role: RoleAdmin, Authenticated: true}
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"user", RoleUser, true},
		{"moderator", RoleModerator, true},
		{"admin", RoleAdmin, true},
		{"", RoleAnonymous, false},
		{"superuser", RoleAnonymous, false},
		{"Admin", RoleAnonymous, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCatalogWritesAreAdminOnly(t *testing.T) {
	for _, res := range []Resource{
		ResourceCategory,
		ResourceGenre,
		ResourceTitle,
	} {
		assert.True(t, CanAct(anon, ActionRead, res))
		assert.True(t, CanAct(plainUser, ActionRead, res))

		assert.False(t, CanAct(anon, ActionWrite, res))
		assert.False(t, CanAct(plainUser, ActionWrite, res))
		assert.False(t, CanAct(moderator, ActionWrite, res))
		assert.True(t, CanAct(adminUser, ActionWrite, res))
	}
}

func TestReviewAndCommentOwnership(t *testing.T) {
	for _, res := range []Resource{ResourceReview, ResourceComment} {
		// anyone reads, including objects owned by others
		assert.True(t, Allowed(anon, ActionRead, res, "u1"))

		// any authenticated actor may create
		assert.True(t, CanAct(plainUser, ActionWrite, res))
		assert.False(t, CanAct(anon, ActionWrite, res))

		// owners edit their own objects, not others'
		assert.True(t, Allowed(plainUser, ActionWrite, res, plainUser.ID))
		assert.False(t, Allowed(plainUser, ActionWrite, res, "someone-else"))

		// staff edit anything
		assert.True(t, Allowed(moderator, ActionWrite, res, "someone-else"))
		assert.True(t, Allowed(adminUser, ActionWrite, res, "someone-else"))
	}
}

func TestUserAdminResource(t *testing.T) {
	assert.False(t, CanAct(anon, ActionRead, ResourceUserAdmin))
	assert.False(t, CanAct(plainUser, ActionRead, ResourceUserAdmin))
	assert.False(t, CanAct(moderator, ActionWrite, ResourceUserAdmin))
	assert.True(t, CanAct(adminUser, ActionRead, ResourceUserAdmin))
	assert.True(t, CanAct(adminUser, ActionWrite, ResourceUserAdmin))
}

func TestSelfProfile(t *testing.T) {
	assert.True(t, Allowed(plainUser, ActionWrite, ResourceSelfProfile, plainUser.ID))
	assert.False(t, Allowed(plainUser, ActionWrite, ResourceSelfProfile, "other"))
	assert.False(t, Allowed(anon, ActionRead, ResourceSelfProfile, ""))
}

// A token carrying a role the enum does not know must not be treated as
// an authenticated plain user for ownership checks.
func TestUnknownRoleDeniedOwnership(t *testing.T) {
	odd := Actor{ID: "x1", Role: RoleAnonymous, Authenticated: true}

	assert.False(t, Allowed(odd, ActionWrite, ResourceReview, "x1"))
	assert.False(t, CanAct(odd, ActionWrite, ResourceComment))
}

func TestUnknownResourceDenied(t *testing.T) {
	assert.False(t, Allowed(adminUser, ActionRead, Resource(99), ""))
}
