// Package forge wraps the git hosting platform's REST API for courseops.
// It exposes the organization model the provisioning engine works against:
// repositories, teams, memberships, collaborators, branch protection,
// commits, issues, and milestones.
//
// The package includes:
// - APIClient interface for hosting platform operations
// - Client implementation backed by the GitHub REST API
// - A generic paginated lister for page-based list endpoints
// - A structured error taxonomy with retry support
package forge
