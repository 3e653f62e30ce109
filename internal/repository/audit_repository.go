package repository

import (
	"context"

	models "github.com/chrisdamba/boatride/internal"
)

type AuditRepository struct {
	db DBConn
}

func NewAuditRepository(db DBConn) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Name() string {
	return "postgres"
}

func (r *AuditRepository) Write(ctx context.Context, e models.AuditEntry) error {
	query := `
        INSERT INTO audit_logs (id, timestamp, actor, actor_id, action, module, details, ip_address, entity_id, entity_type)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.Exec(ctx, query,
		e.ID, e.Timestamp, e.Actor, e.ActorID, e.Action, e.Module,
		e.Details, e.IPAddress, e.EntityID, e.EntityType,
	)
	return err
}
