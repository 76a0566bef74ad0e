// Package domain defines the core types shared by siteforge components.
package domain

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// ProjectIdentity is the operator-chosen project name. It is used verbatim
// as a path segment and as part of externally visible resource names.
type ProjectIdentity struct {
	Name string
}

// NewProjectIdentity validates the project name and returns an identity.
func NewProjectIdentity(name string) (ProjectIdentity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProjectIdentity{}, fmt.Errorf("project name cannot be empty")
	}
	return ProjectIdentity{Name: name}, nil
}

// SiteName derives the deterministic hosting site name from the project name.
func (p ProjectIdentity) SiteName(prefix string) string {
	return slug.Make(prefix + "-" + p.Name)
}

// MigrationPrefix derives the project part of migration artifact names.
// Supabase applies migrations in name-sorted order, so only the leading
// timestamp may vary between artifacts.
func (p ProjectIdentity) MigrationPrefix() string {
	return strings.ReplaceAll(slug.Make(p.Name), "-", "_")
}

// ResourceType identifies one of the external resources managed by siteforge.
type ResourceType int

const (
	ResourceWorkingTree ResourceType = iota
	ResourceRepository
	ResourceSite
	ResourceDatabaseLink
)

func (r ResourceType) String() string {
	switch r {
	case ResourceWorkingTree:
		return "working tree"
	case ResourceRepository:
		return "repository"
	case ResourceSite:
		return "site"
	case ResourceDatabaseLink:
		return "database link"
	default:
		return "unknown"
	}
}

// ResourceState is the result of probing one external resource. It is the
// pivot value the provisioning orchestrator switches on: an absent resource
// is created, a present one is skipped and its identifier reused.
type ResourceState struct {
	Resource ResourceType
	Exists   bool
	ID       string
	Name     string
}

// Absent returns the state for a resource that does not exist yet.
func Absent(r ResourceType) ResourceState {
	return ResourceState{Resource: r}
}

// Present returns the state for an existing resource with its identifying
// attributes.
func Present(r ResourceType, id, name string) ResourceState {
	return ResourceState{Resource: r, Exists: true, ID: id, Name: name}
}

// DeployContext is a named deployment environment of the hosting site.
type DeployContext string

const (
	DeployContextProduction    DeployContext = "production"
	DeployContextStaging       DeployContext = "staging"
	DeployContextBranchPreview DeployContext = "branch-preview"
)

// AllDeployContexts returns every deploy context in the order environment
// variables are applied.
func AllDeployContexts() []DeployContext {
	return []DeployContext{
		DeployContextProduction,
		DeployContextStaging,
		DeployContextBranchPreview,
	}
}

// HostingContext maps a deploy context to the hosting provider's context
// identifier for environment variables.
func (c DeployContext) HostingContext() string {
	switch c {
	case DeployContextProduction:
		return "production"
	case DeployContextStaging:
		return "branch-deploy"
	case DeployContextBranchPreview:
		return "deploy-preview"
	default:
		return string(c)
	}
}
