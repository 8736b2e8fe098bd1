// Package idempotency guarda en Redis la respuesta de cada POST con Idempotency-Key
// para devolverla tal cual si el cliente reintenta.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/entregas-api/pkg/config"
)

var (
	// ErrInProgress otra solicitud con la misma clave todavía se está procesando.
	ErrInProgress = errors.New("idempotency: solicitud en curso")
	// ErrKeyReused la clave ya se usó con un cuerpo distinto.
	ErrKeyReused = errors.New("idempotency: clave reutilizada con otra solicitud")
)

// Response respuesta HTTP almacenada. Status 0 marca una reserva todavía en curso.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint huella SHA-256 del cuerpo de la solicitud.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Store claves de idempotencia sobre Redis (SET NX + TTL).
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("idempotency: ping: %w", err)
	}
	return client, nil
}

// NewStore construye el almacén. ttl <= 0 usa 24h.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl, prefix: "idem:"}
}

// Claim reserva la clave para la solicitud con la huella dada. Si ya existe una respuesta
// guardada la devuelve (claimed=false); si la clave está reservada por otra solicitud
// devuelve ErrInProgress. Una huella distinta a la guardada devuelve ErrKeyReused.
func (s *Store) Claim(ctx context.Context, key, fingerprint string) (stored *Response, claimed bool, err error) {
	k := s.prefix + key
	pending, err := json.Marshal(Response{Fingerprint: fingerprint})
	if err != nil {
		return nil, false, fmt.Errorf("idempotency: encode: %w", err)
	}
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pending, s.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("idempotency: setnx: %w", err)
		}
		if ok {
			return nil, true, nil
		}
		val, err := s.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			// Expiró entre SETNX y GET: reintentar la reserva.
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("idempotency: get: %w", err)
		}
		var resp Response
		if err := json.Unmarshal(val, &resp); err != nil {
			return nil, false, fmt.Errorf("idempotency: decode: %w", err)
		}
		if resp.Fingerprint != fingerprint {
			return nil, false, ErrKeyReused
		}
		if resp.Status == 0 {
			return nil, false, ErrInProgress
		}
		return &resp, false, nil
	}
	return nil, false, ErrInProgress
}

// Complete guarda la respuesta final para la clave reservada.
func (s *Store) Complete(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: set: %w", err)
	}
	return nil
}

// Release libera la clave sin guardar respuesta (errores transitorios: el cliente puede reintentar).
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency: del: %w", err)
	}
	return nil
}
