package uow

import "github.com/dayforge/dayforge/ent/schema"

// entAuditMeta adapts an event's entity snapshot (or nil, for deletions)
// into the AuditLog.meta JSON column's value-object shape.
func entAuditMeta(entityData map[string]interface{}) schema.AuditLogMeta {
	return schema.AuditLogMeta{EntityData: entityData}
}
