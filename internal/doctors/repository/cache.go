package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"medibites/pkg/logger"
	"medibites/pkg/metrics"
	"medibites/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix      = "doctors:"
	doctorKeyPrefix     = cacheKeyPrefix + "id:"
	specialtyKeyPrefix  = cacheKeyPrefix + "specialty:"
	specialtiesCacheKey = cacheKeyPrefix + "specialties"
)

// cachedDoctorRepository is a Redis read-through cache in front of another
// DoctorRepository. Redis failures fall back to the inner repository and
// errors from the inner repository, including not-found, are never cached.
type cachedDoctorRepository struct {
	inner   DoctorRepository
	redis   redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewCachedDoctorRepository(inner DoctorRepository, rdb redis.Cmdable, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) DoctorRepository {
	if rdb == nil || ttl <= 0 {
		return inner
	}
	return &cachedDoctorRepository{
		inner:   inner,
		redis:   rdb,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

func (r *cachedDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	key := doctorKeyPrefix + id
	var doctor model.Doctor
	if r.get(ctx, key, &doctor) {
		return &doctor, nil
	}

	found, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, found)
	return found, nil
}

func (r *cachedDoctorRepository) FindBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	key := specialtyKeyPrefix + specialty
	var doctors []*model.Doctor
	if r.get(ctx, key, &doctors) {
		return doctors, nil
	}

	found, err := r.inner.FindBySpecialty(ctx, specialty)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		r.set(ctx, key, found)
	}
	return found, nil
}

func (r *cachedDoctorRepository) Specialties(ctx context.Context) ([]string, error) {
	var specialties []string
	if r.get(ctx, specialtiesCacheKey, &specialties) {
		return specialties, nil
	}

	found, err := r.inner.Specialties(ctx)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		r.set(ctx, specialtiesCacheKey, found)
	}
	return found, nil
}

func (r *cachedDoctorRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("Doctor cache read failed, falling back to store", "key", key, "error", err)
		}
		r.metrics.ObserveDoctorCache(false)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warn("Discarding malformed doctor cache entry", "key", key, "error", err)
		r.redis.Del(ctx, key)
		r.metrics.ObserveDoctorCache(false)
		return false
	}

	r.metrics.ObserveDoctorCache(true)
	return true
}

func (r *cachedDoctorRepository) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.log.Warn("Failed to encode doctor cache entry", "key", key, "error", err)
		return
	}
	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("Doctor cache write failed", "key", key, "error", err)
	}
}
