// Package access decides who may delete posts and comments, who sees the
// admin panel, and which role a new account receives.
package access

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// legacyAdminUsername is the account name the legacy rule treats as admin.
const legacyAdminUsername = "Admin"

// adminPrefix marks usernames that receive the admin role at sign-up.
const adminPrefix = "admin"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-._]+$`)

// Gate holds the authorization rules. Its predicates are pure apart from
// reading feature flags.
type Gate struct {
	flags *featureflags.Manager
}

// NewGate returns a Gate reading its switches from flags.
func NewGate(flags *featureflags.Manager) *Gate {
	return &Gate{flags: flags}
}

// CanDeletePost reports whether user may delete post: the author always may,
// administrators may delete anything.
func (g *Gate) CanDeletePost(user *models.User, post *models.Post) bool {
	if user == nil || post == nil {
		return false
	}
	if user.ID == post.UserID || user.IsAdmin() {
		return true
	}
	return g.flags.On(featureflags.LegacyAdminUsername) && user.Username == legacyAdminUsername
}

// CanDeleteComment reports whether user authored comment. There is no
// administrator override.
func (g *Gate) CanDeleteComment(user *models.User, comment *models.Comment) bool {
	return user != nil && comment != nil && user.ID == comment.UserID
}

// CanViewAdminPanel reports whether user holds the admin role.
func (g *Gate) CanViewAdminPanel(user *models.User) bool {
	return user.IsAdmin()
}

// ValidateUsername rejects names with characters outside letters, digits,
// dash, dot and underscore.
func ValidateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return models.NewValidationError("username may only contain letters, numbers, '-', '.' and '_'")
	}
	return nil
}

// RoleForNewUser picks the role for a new account named name. The prefix
// flag is evaluated per username, so a percentage value rolls the rule out
// to a stable subset of names. Prefix grants are audit-logged.
func (g *Gate) RoleForNewUser(ctx context.Context, name string) int {
	if !strings.HasPrefix(name, adminPrefix) || !g.flags.Enabled(featureflags.AdminPrefixSignup, name) {
		return models.RoleUser
	}
	observability.AdminRoleGrants.WithLabelValues("signup_prefix").Inc()
	middleware.Logger.WarnContext(ctx, "admin role granted at sign-up",
		slog.String("audit", "role_grant"),
		slog.String("source", "signup_prefix"),
		slog.String("username", name),
	)
	return models.RoleAdmin
}
