package store

import (
	"context"

	"github.com/emrgen/custody/internal/model"
)

type Store interface {
	RegistryStore
	AccessStore
	AgentStore
	LocationStore
	RecoveryStore
	BackupStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type RegistryStore interface {
	// CreateDocument registers a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	// UpdateDocument saves a changed document row.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// CreateDocumentVersion appends a version record for a document.
	CreateDocumentVersion(ctx context.Context, version *model.DocumentVersion) error
	// GetDocumentVersion retrieves one version record of a document.
	GetDocumentVersion(ctx context.Context, docID string, version int64) (*model.DocumentVersion, error)
	// ListDocumentVersions retrieves all version records of a document.
	ListDocumentVersions(ctx context.Context, docID string) ([]*model.DocumentVersion, error)
}

type AccessStore interface {
	// UpsertAccessGrant creates or overwrites the grant for (document, grantee).
	UpsertAccessGrant(ctx context.Context, grant *model.AccessGrant) error
	// GetAccessGrant retrieves the grant for (document, grantee).
	GetAccessGrant(ctx context.Context, docID, grantee string) (*model.AccessGrant, error)
	// DeleteAccessGrant removes the grant for (document, grantee).
	DeleteAccessGrant(ctx context.Context, docID, grantee string) error
}

type AgentStore interface {
	// CreateAgent registers a new recovery agent.
	CreateAgent(ctx context.Context, agent *model.RecoveryAgent) error
	// GetAgent retrieves an agent by ID.
	GetAgent(ctx context.Context, agentID string) (*model.RecoveryAgent, error)
	// UpdateAgent saves a changed agent row.
	UpdateAgent(ctx context.Context, agent *model.RecoveryAgent) error
	// GetActiveAgentByAddress retrieves an active agent controlled by address.
	GetActiveAgentByAddress(ctx context.Context, address string) (*model.RecoveryAgent, error)
}

type LocationStore interface {
	// CreateLocation registers a new backup location.
	CreateLocation(ctx context.Context, location *model.BackupLocation) error
	// GetLocation retrieves a location by ID.
	GetLocation(ctx context.Context, locationID string) (*model.BackupLocation, error)
	// UpdateLocation saves a changed location row.
	UpdateLocation(ctx context.Context, location *model.BackupLocation) error
}

type RecoveryStore interface {
	// UpsertRecoverySettings creates or overwrites a document's recovery settings.
	UpsertRecoverySettings(ctx context.Context, settings *model.RecoverySettings) error
	// GetRecoverySettings retrieves a document's recovery settings.
	GetRecoverySettings(ctx context.Context, docID string) (*model.RecoverySettings, error)
	// CreateRecoveryRequest creates a new recovery request.
	CreateRecoveryRequest(ctx context.Context, request *model.RecoveryRequest) error
	// GetRecoveryRequest retrieves a request by ID.
	GetRecoveryRequest(ctx context.Context, requestID string) (*model.RecoveryRequest, error)
	// UpdateRecoveryRequest saves a changed request row.
	UpdateRecoveryRequest(ctx context.Context, request *model.RecoveryRequest) error
	// CreateRecoveryApproval records an agent approval for a request.
	CreateRecoveryApproval(ctx context.Context, approval *model.RecoveryApproval) error
	// GetRecoveryApproval retrieves the approval for (request, agent).
	GetRecoveryApproval(ctx context.Context, requestID, agentID string) (*model.RecoveryApproval, error)
	// CountRecoveryApprovals counts distinct approvals for a request.
	CountRecoveryApprovals(ctx context.Context, requestID string) (int64, error)
	// CreateRecoveryEvent writes the audit record for an executed request.
	CreateRecoveryEvent(ctx context.Context, event *model.RecoveryEvent) error
	// GetRecoveryEvent retrieves the audit record for a request.
	GetRecoveryEvent(ctx context.Context, requestID string) (*model.RecoveryEvent, error)
}

type BackupStore interface {
	// UpsertBackupPolicy creates or overwrites a document's backup policy.
	UpsertBackupPolicy(ctx context.Context, policy *model.BackupPolicy) error
	// GetBackupPolicy retrieves a document's backup policy.
	GetBackupPolicy(ctx context.Context, docID string) (*model.BackupPolicy, error)
	// ListBackupPolicies retrieves all backup policies.
	ListBackupPolicies(ctx context.Context) ([]*model.BackupPolicy, error)
	// UpsertDocumentBackup creates or overwrites the backup for (document, location).
	UpsertDocumentBackup(ctx context.Context, backup *model.DocumentBackup) error
	// GetDocumentBackup retrieves the backup for (document, location).
	GetDocumentBackup(ctx context.Context, docID, locationID string) (*model.DocumentBackup, error)
	// ListDocumentBackups retrieves all backups of a document.
	ListDocumentBackups(ctx context.Context, docID string) ([]*model.DocumentBackup, error)
	// UpsertBackupVerification creates or overwrites the verification for (document, location).
	UpsertBackupVerification(ctx context.Context, verification *model.BackupVerification) error
	// GetBackupVerification retrieves the verification for (document, location).
	GetBackupVerification(ctx context.Context, docID, locationID string) (*model.BackupVerification, error)
}
