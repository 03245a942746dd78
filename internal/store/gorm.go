package store

import (
	"context"

	"github.com/emrgen/custody/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) CreateDocumentVersion(ctx context.Context, version *model.DocumentVersion) error {
	return g.db.WithContext(ctx).Create(version).Error
}

func (g *GormStore) GetDocumentVersion(ctx context.Context, docID string, version int64) (*model.DocumentVersion, error) {
	var v model.DocumentVersion
	err := g.db.WithContext(ctx).Where("document_id = ? AND version = ?", docID, version).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (g *GormStore) ListDocumentVersions(ctx context.Context, docID string) ([]*model.DocumentVersion, error) {
	var versions []*model.DocumentVersion
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).Order("version asc").Find(&versions).Error
	return versions, err
}

func (g *GormStore) UpsertAccessGrant(ctx context.Context, grant *model.AccessGrant) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(grant).Error
}

func (g *GormStore) GetAccessGrant(ctx context.Context, docID, grantee string) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := g.db.WithContext(ctx).Where("document_id = ? AND grantee = ?", docID, grantee).First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (g *GormStore) DeleteAccessGrant(ctx context.Context, docID, grantee string) error {
	return g.db.WithContext(ctx).Where("document_id = ? AND grantee = ?", docID, grantee).Delete(&model.AccessGrant{}).Error
}

func (g *GormStore) CreateAgent(ctx context.Context, agent *model.RecoveryAgent) error {
	return g.db.WithContext(ctx).Create(agent).Error
}

func (g *GormStore) GetAgent(ctx context.Context, agentID string) (*model.RecoveryAgent, error) {
	var agent model.RecoveryAgent
	err := g.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (g *GormStore) UpdateAgent(ctx context.Context, agent *model.RecoveryAgent) error {
	return g.db.WithContext(ctx).Save(agent).Error
}

func (g *GormStore) GetActiveAgentByAddress(ctx context.Context, address string) (*model.RecoveryAgent, error) {
	var agent model.RecoveryAgent
	err := g.db.WithContext(ctx).
		Where("agent_address = ? AND status = ?", address, model.AgentStatusActive).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (g *GormStore) CreateLocation(ctx context.Context, location *model.BackupLocation) error {
	return g.db.WithContext(ctx).Create(location).Error
}

func (g *GormStore) GetLocation(ctx context.Context, locationID string) (*model.BackupLocation, error) {
	var location model.BackupLocation
	err := g.db.WithContext(ctx).Where("location_id = ?", locationID).First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (g *GormStore) UpdateLocation(ctx context.Context, location *model.BackupLocation) error {
	return g.db.WithContext(ctx).Save(location).Error
}

func (g *GormStore) UpsertRecoverySettings(ctx context.Context, settings *model.RecoverySettings) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(settings).Error
}

func (g *GormStore) GetRecoverySettings(ctx context.Context, docID string) (*model.RecoverySettings, error) {
	var settings model.RecoverySettings
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (g *GormStore) CreateRecoveryRequest(ctx context.Context, request *model.RecoveryRequest) error {
	return g.db.WithContext(ctx).Create(request).Error
}

func (g *GormStore) GetRecoveryRequest(ctx context.Context, requestID string) (*model.RecoveryRequest, error) {
	var request model.RecoveryRequest
	err := g.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (g *GormStore) UpdateRecoveryRequest(ctx context.Context, request *model.RecoveryRequest) error {
	return g.db.WithContext(ctx).Save(request).Error
}

func (g *GormStore) CreateRecoveryApproval(ctx context.Context, approval *model.RecoveryApproval) error {
	return g.db.WithContext(ctx).Create(approval).Error
}

func (g *GormStore) GetRecoveryApproval(ctx context.Context, requestID, agentID string) (*model.RecoveryApproval, error) {
	var approval model.RecoveryApproval
	err := g.db.WithContext(ctx).Where("request_id = ? AND agent_id = ?", requestID, agentID).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (g *GormStore) CountRecoveryApprovals(ctx context.Context, requestID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.RecoveryApproval{}).Where("request_id = ?", requestID).Count(&count).Error
	return count, err
}

func (g *GormStore) CreateRecoveryEvent(ctx context.Context, event *model.RecoveryEvent) error {
	return g.db.WithContext(ctx).Create(event).Error
}

func (g *GormStore) GetRecoveryEvent(ctx context.Context, requestID string) (*model.RecoveryEvent, error) {
	var event model.RecoveryEvent
	err := g.db.WithContext(ctx).Where("request_id = ?", requestID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (g *GormStore) UpsertBackupPolicy(ctx context.Context, policy *model.BackupPolicy) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(policy).Error
}

func (g *GormStore) GetBackupPolicy(ctx context.Context, docID string) (*model.BackupPolicy, error) {
	var policy model.BackupPolicy
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (g *GormStore) ListBackupPolicies(ctx context.Context) ([]*model.BackupPolicy, error) {
	var policies []*model.BackupPolicy
	err := g.db.WithContext(ctx).Find(&policies).Error
	return policies, err
}

func (g *GormStore) UpsertDocumentBackup(ctx context.Context, backup *model.DocumentBackup) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(backup).Error
}

func (g *GormStore) GetDocumentBackup(ctx context.Context, docID, locationID string) (*model.DocumentBackup, error) {
	var backup model.DocumentBackup
	err := g.db.WithContext(ctx).Where("document_id = ? AND location_id = ?", docID, locationID).First(&backup).Error
	if err != nil {
		return nil, err
	}
	return &backup, nil
}

func (g *GormStore) ListDocumentBackups(ctx context.Context, docID string) ([]*model.DocumentBackup, error) {
	var backups []*model.DocumentBackup
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).Find(&backups).Error
	return backups, err
}

func (g *GormStore) UpsertBackupVerification(ctx context.Context, verification *model.BackupVerification) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(verification).Error
}

func (g *GormStore) GetBackupVerification(ctx context.Context, docID, locationID string) (*model.BackupVerification, error) {
	var verification model.BackupVerification
	err := g.db.WithContext(ctx).Where("document_id = ? AND location_id = ?", docID, locationID).First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
