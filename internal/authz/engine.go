package authz

import "sigedoc/internal/domain/models"

// Action is an operation an actor may attempt against a record.
type Action string

const (
	ActionEdit     Action = "edit"
	ActionView     Action = "view"
	ActionArchive  Action = "archive"
	ActionDelete   Action = "delete"
	ActionDownload Action = "download"
	ActionApprove  Action = "approve"
)

// Record is the authorization-relevant projection of a target record:
// who created it and where it is in its lifecycle.
type Record struct {
	CreatedBy string
	Status    models.Status
}

// rule is one predicate -> decision pair. Rules are evaluated in order
// and the first matching rule decides; nothing below it is consulted.
type rule struct {
	match func(actor *models.Actor, rec *Record) bool
	allow bool
}

// Engine decides, per action and per record, whether an actor may
// perform it. It is a pure function of its inputs: no side effects, no
// shared mutable state, safe for any number of concurrent callers.
//
// The engine is parameterized by a permission namespace prefix (for
// example "auditorias:actas") so the same rule tables serve multiple
// record kinds. Granted permission codes compose as prefix + "_" +
// suffix, e.g. "auditorias:actas_edit_all".
type Engine struct {
	prefix string
	tables map[Action][]rule
}

// New builds an engine for the given permission namespace prefix.
//
// Rule precedence is fixed and deliberate: role overrides come before
// granted-permission checks because roles represent organization-wide
// authority that must not depend on an individual grant, and the
// "_all" scope is checked before the ownership-scoped grant so a
// broader grant can never be shadowed by a narrower one. Ownership
// edit is draft-only: a creator cannot bypass review once a record has
// progressed.
func New(prefix string) *Engine {
	e := &Engine{prefix: prefix}

	managementRole := func(actor *models.Actor, _ *Record) bool {
		return actor.Role == models.RoleAdmin || actor.Role == models.RoleGerencia
	}
	adminRole := func(actor *models.Actor, _ *Record) bool {
		return actor.Role == models.RoleAdmin
	}
	granted := func(suffix string) func(*models.Actor, *Record) bool {
		code := e.perm(suffix)
		return func(actor *models.Actor, _ *Record) bool {
			return actor.HasPermission(code)
		}
	}

	e.tables = map[Action][]rule{
		ActionEdit: {
			{match: func(_ *models.Actor, rec *Record) bool {
				return rec.Status == models.StatusArchived
			}, allow: false},
			{match: managementRole, allow: true},
			{match: granted("edit_all"), allow: true},
			{match: func(actor *models.Actor, rec *Record) bool {
				return actor.HasPermission(e.perm("edit")) &&
					rec.CreatedBy == actor.ID &&
					rec.Status == models.StatusDraft
			}, allow: true},
		},
		ActionView: {
			{match: managementRole, allow: true},
			{match: granted("view_all"), allow: true},
			{match: func(actor *models.Actor, rec *Record) bool {
				return rec.CreatedBy == actor.ID
			}, allow: true},
			{match: func(actor *models.Actor, rec *Record) bool {
				return actor.HasPermission(e.perm("view")) &&
					rec.Status == models.StatusApproved
			}, allow: true},
		},
		ActionArchive: {
			{match: managementRole, allow: true},
			{match: granted("archive"), allow: true},
		},
		ActionDelete: {
			{match: adminRole, allow: true},
			{match: granted("delete"), allow: true},
		},
		ActionDownload: {
			{match: managementRole, allow: true},
			{match: granted("download"), allow: true},
		},
		ActionApprove: {
			{match: managementRole, allow: true},
			{match: granted("approve"), allow: true},
		},
	}

	return e
}

// Decide evaluates the rule table for action against actor and rec.
// The safe default is deny: a nil actor, an actor without an id, a nil
// record, or an unknown action all return false. Decide never errors.
func (e *Engine) Decide(action Action, actor *models.Actor, rec *Record) bool {
	if actor == nil || actor.ID == "" || rec == nil {
		return false
	}
	for _, r := range e.tables[action] {
		if r.match(actor, rec) {
			return r.allow
		}
	}
	return false
}

func (e *Engine) perm(suffix string) string {
	return e.prefix + "_" + suffix
}
