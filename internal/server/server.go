// Package server exposes a program store over the same HTTP contract the
// api client speaks.
package server

import (
	"context"
	"errors"
	"time"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/api"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
	"agenda-cli/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Store is what the handlers need from the persistence layer.
type Store interface {
	activity.Backend
	ListDays(ctx context.Context, eventID string) ([]model.ActivityDay, error)
	GetDetail(ctx context.Context, detailID string) (model.ActivityDetail, error)
	DeleteActivityDetail(ctx context.Context, detailID string) error
}

type Server struct {
	app   *fiber.App
	store Store
	log   logx.Logger
}

type createRecordIn struct {
	Date                string                 `json:"date"`
	EventID             string                 `json:"eventId"`
	LocalizedCategoryID int                    `json:"localizedCategoryId"`
	Details             []model.ActivityDetail `json:"details"`
}

type updateRecordIn struct {
	createRecordIn
	ActivityID string `json:"activityId"`
}

// fieldErrorsOut is the 422 body: a summary plus the message of each field.
type fieldErrorsOut struct {
	Error  string               `json:"error"`
	Fields activity.FieldErrors `json:"fields"`
}

func New(st Store, log logx.Logger) *Server {
	s := &Server{store: st, log: log.With(logx.String("comp", "server"))}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.accessLog)
	s.routes()
	return s
}

// App is exposed for in-process tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info("listening", logx.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	s.app.Get(api.PathCategories, s.listCategories)
	s.app.Post(api.PathActivities, s.createDetails)
	s.app.Put(api.PathActivities, s.updateDetails)
	s.app.Get(api.PathDetail+":detailId", s.getDetail)
	s.app.Delete(api.PathDetail+":detailId", s.deleteDetail)
	s.app.Get("/api/eventos/:eventId/actividades", s.listDays)
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	s.log.Debug("http",
		logx.String("method", c.Method()),
		logx.String("path", c.Path()),
		logx.Int("status", status),
		logx.Duration("took", time.Since(start)),
	)
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()
	var fe *fiber.Error
	var uc activity.UnknownCategoryError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		msg = fe.Message
	case errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.As(err, &uc), errors.Is(err, activity.ErrInvalidDate):
		code = fiber.StatusBadRequest
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", logx.String("path", c.Path()), logx.Err(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	list, err := s.store.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (s *Server) createDetails(c *fiber.Ctx) error {
	var in []createRecordIn
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cuerpo JSON inválido")
	}
	if len(in) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "se esperaba al menos un registro")
	}
	records := make([]activity.CreateRecord, 0, len(in))
	for _, rec := range in {
		details, bad, err := s.payloads(rec, false)
		if err != nil {
			return err
		}
		if bad != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(bad)
		}
		records = append(records, activity.CreateRecord{
			Date:                activity.NormalizeDate(rec.Date),
			EventID:             rec.EventID,
			LocalizedCategoryID: activity.LocalizedID(rec.LocalizedCategoryID),
			Details:             details,
		})
	}
	out, err := s.store.CreateActivityDetail(c.UserContext(), records)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *Server) updateDetails(c *fiber.Ctx) error {
	var in []updateRecordIn
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cuerpo JSON inválido")
	}
	if len(in) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "se esperaba al menos un registro")
	}
	records := make([]activity.UpdateRecord, 0, len(in))
	for _, rec := range in {
		details, bad, err := s.payloads(rec.createRecordIn, true)
		if err != nil {
			return err
		}
		if bad != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(bad)
		}
		records = append(records, activity.UpdateRecord{
			Date:                activity.NormalizeDate(rec.Date),
			EventID:             rec.EventID,
			LocalizedCategoryID: activity.LocalizedID(rec.LocalizedCategoryID),
			ActivityID:          rec.ActivityID,
			Details:             details,
		})
	}
	out, err := s.store.UpdateActivityDetail(c.UserContext(), records)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// payloads validates and rebuilds the typed details of one record. A
// non-nil fieldErrorsOut means the request is rejected with 422.
func (s *Server) payloads(rec createRecordIn, update bool) ([]activity.Payload, *fieldErrorsOut, error) {
	if activity.NormalizeDate(rec.Date) == "" {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "fecha inválida: "+rec.Date)
	}
	if rec.EventID == "" {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "eventId es obligatorio")
	}
	if len(rec.Details) == 0 {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "el registro no tiene detalles")
	}
	out := make([]activity.Payload, 0, len(rec.Details))
	for _, d := range rec.Details {
		if d.LocalizedCategoryID == 0 {
			d.LocalizedCategoryID = rec.LocalizedCategoryID
		}
		if update && d.DetailID == "" {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "detailId es obligatorio al actualizar")
		}
		if !update {
			d.DetailID = ""
		}
		errs, err := activity.ValidateDetail(d)
		if err != nil {
			return nil, nil, err
		}
		if !errs.Empty() {
			bad := &fieldErrorsOut{Error: "campos inválidos", Fields: errs}
			return nil, bad, nil
		}
		p, err := activity.PayloadFromDetail(d, rec.Date)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, p)
	}
	return out, nil, nil
}

func (s *Server) getDetail(c *fiber.Ctx) error {
	d, err := s.store.GetDetail(c.UserContext(), c.Params("detailId"))
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *Server) deleteDetail(c *fiber.Ctx) error {
	if err := s.store.DeleteActivityDetail(c.UserContext(), c.Params("detailId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listDays(c *fiber.Ctx) error {
	days, err := s.store.ListDays(c.UserContext(), c.Params("eventId"))
	if err != nil {
		return err
	}
	if days == nil {
		days = []model.ActivityDay{}
	}
	return c.JSON(days)
}
