package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/entregas-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional en POST de entregas y devoluciones.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 200

// IdempotencyStore almacén de respuestas por clave.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, fingerprint string) (*idempotency.Response, bool, error)
	Complete(ctx context.Context, key string, resp idempotency.Response) error
	Release(ctx context.Context, key string) error
}

// RequestLogger registra cada petición con método, ruta, status y latencia.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("petición HTTP")
		return err
	}
}

// Idempotency reproduce la respuesta guardada cuando el cliente reintenta con la misma clave.
// Sin store o sin cabecera la petición pasa tal cual. Las respuestas 5xx no se guardan
// para que el reintento vuelva a ejecutar la operación. La clave queda ligada a la huella
// del cuerpo: reutilizarla con otro cuerpo responde 422.
func Idempotency(store IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IDEMPOTENCY_KEY", Message: "Idempotency-Key demasiado larga"})
		}

		ctx := c.UserContext()
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		fingerprint := idempotency.Fingerprint(c.Body())

		stored, claimed, err := store.Claim(ctx, scoped, fingerprint)
		switch {
		case errors.Is(err, idempotency.ErrKeyReused):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_KEY_REUSED", Message: "la Idempotency-Key ya se usó con un cuerpo distinto"})
		case errors.Is(err, idempotency.ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "hay una solicitud en curso con la misma Idempotency-Key"})
		case err != nil:
			log.Warn().Err(err).Msg("idempotencia no disponible, se procesa sin clave")
			return c.Next()
		case !claimed && stored != nil:
			c.Set("Idempotent-Replayed", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Msg("liberar clave de idempotencia")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Msg("liberar clave de idempotencia")
			}
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		resp := idempotency.Response{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
			Fingerprint: fingerprint,
		}
		if err := store.Complete(ctx, scoped, resp); err != nil {
			log.Warn().Err(err).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}
