package actas

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"sigedoc/internal/authz"
	"sigedoc/internal/config"
	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/domain/repositories"
	"sigedoc/internal/render"
)

// Renderer produces a document from a named template and a data map.
type Renderer interface {
	Render(ctx context.Context, templateCode string, data map[string]any) ([]byte, error)
}

// Service manages meeting records (actas). Every mutating operation is
// gated by the authorization engine and every lifecycle transition is
// guarded so status only moves forward.
type Service struct {
	actas    repositories.ActaRepository
	engine   *authz.Engine
	renderer Renderer
	logger   *slog.Logger
}

// NewService creates an acta service. renderer may be nil when no
// template-rendering collaborator is configured.
func NewService(actas repositories.ActaRepository, engine *authz.Engine, renderer Renderer, logger *slog.Logger) *Service {
	return &Service{actas: actas, engine: engine, renderer: renderer, logger: logger}
}

// CreateForm carries the fields of a new acta.
type CreateForm struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	MeetingAt time.Time `json:"meeting_at"`
}

func (f CreateForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, config.MaxActaTitleLength)),
		validation.Field(&f.MeetingAt, validation.Required),
	)
}

// Create records a new acta in draft, owned by the actor.
func (s *Service) Create(ctx context.Context, actor *models.Actor, form *CreateForm) (*models.Acta, error) {
	if actor == nil || actor.ID == "" {
		return nil, fmt.Errorf("create acta: %w", domain.ErrUnauthorized)
	}
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	acta := &models.Acta{
		ID:        uuid.NewString(),
		Title:     form.Title,
		Summary:   form.Summary,
		MeetingAt: form.MeetingAt,
		CreatedBy: actor.ID,
		Status:    models.StatusDraft,
	}
	if err := s.actas.Create(ctx, acta); err != nil {
		return nil, err
	}

	s.logger.Info("acta created", "acta_id", acta.ID, "created_by", actor.ID)
	return acta, nil
}

// Get loads an acta, gated by the View rule table.
func (s *Service) Get(ctx context.Context, actor *models.Actor, id string) (*models.Acta, error) {
	acta, err := s.actas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.Decide(authz.ActionView, actor, actaRecord(acta)) {
		return nil, fmt.Errorf("view acta %s: %w", id, domain.ErrForbidden)
	}
	return acta, nil
}

// List returns the actas the actor may view.
func (s *Service) List(ctx context.Context, actor *models.Actor) ([]models.Acta, error) {
	all, err := s.actas.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Acta, 0, len(all))
	for _, acta := range all {
		if s.engine.Decide(authz.ActionView, actor, actaRecord(&acta)) {
			visible = append(visible, acta)
		}
	}
	return visible, nil
}

// Approve moves a draft acta to approved, gated by the Approve rule
// table.
func (s *Service) Approve(ctx context.Context, actor *models.Actor, id string) error {
	acta, err := s.actas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.engine.Decide(authz.ActionApprove, actor, actaRecord(acta)) {
		return fmt.Errorf("approve acta %s: %w", id, domain.ErrForbidden)
	}
	if err := s.actas.UpdateStatus(ctx, id,
		[]models.Status{models.StatusDraft},
		models.StatusApproved,
	); err != nil {
		return err
	}

	s.logger.Info("acta approved", "acta_id", id, "approved_by", actor.ID)
	return nil
}

// Archive moves an acta to archived, gated by the Archive rule table.
// Archived is terminal.
func (s *Service) Archive(ctx context.Context, actor *models.Actor, id string) error {
	acta, err := s.actas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.engine.Decide(authz.ActionArchive, actor, actaRecord(acta)) {
		return fmt.Errorf("archive acta %s: %w", id, domain.ErrForbidden)
	}
	if err := s.actas.UpdateStatus(ctx, id,
		[]models.Status{models.StatusDraft, models.StatusApproved},
		models.StatusArchived,
	); err != nil {
		return err
	}

	s.logger.Info("acta archived", "acta_id", id, "archived_by", actor.ID)
	return nil
}

// Delete removes an acta, gated by the Delete rule table.
func (s *Service) Delete(ctx context.Context, actor *models.Actor, id string) error {
	acta, err := s.actas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.engine.Decide(authz.ActionDelete, actor, actaRecord(acta)) {
		return fmt.Errorf("delete acta %s: %w", id, domain.ErrForbidden)
	}
	if err := s.actas.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("acta deleted", "acta_id", id, "deleted_by", actor.ID)
	return nil
}

// RenderDocument produces the printable acta document from its
// template, gated by the View rule table.
func (s *Service) RenderDocument(ctx context.Context, actor *models.Actor, id string) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("render acta %s: no render service configured: %w", id, domain.ErrNotFound)
	}
	acta, err := s.actas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.Decide(authz.ActionView, actor, actaRecord(acta)) {
		return nil, fmt.Errorf("render acta %s: %w", id, domain.ErrForbidden)
	}

	data := render.WithDefaults(map[string]any{
		"title":      acta.Title,
		"summary":    acta.Summary,
		"meeting_at": render.FormatDate(acta.MeetingAt),
		"status":     string(acta.Status),
	}, map[string]any{
		"summary":   "",
		"attendees": render.NormalizeList(nil, 1),
	})

	return s.renderer.Render(ctx, "acta", data)
}

func actaRecord(acta *models.Acta) *authz.Record {
	return &authz.Record{CreatedBy: acta.CreatedBy, Status: acta.Status}
}
