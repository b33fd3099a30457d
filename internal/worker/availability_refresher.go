package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
)

// AvailabilitySource reabastece o cache de disponibilidade dos eventos abertos
type AvailabilitySource interface {
	RefreshOpenEventAvailability(ctx context.Context) (int, error)
}

// AvailabilityRefresher é o worker que mantém o cache de vagas aquecido
type AvailabilityRefresher struct {
	source   AvailabilitySource
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewAvailabilityRefresher cria um novo refresher
func NewAvailabilityRefresher(source AvailabilitySource, interval time.Duration) *AvailabilityRefresher {
	return &AvailabilityRefresher{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start inicia o refresher
func (r *AvailabilityRefresher) Start(ctx context.Context) {
	logger.Info("refresher de disponibilidade iniciado",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("refresher de disponibilidade parado (contexto cancelado)")
			return
		case <-r.stopCh:
			logger.Info("refresher de disponibilidade parado (sinal recebido)")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop para o refresher e espera o loop terminar
func (r *AvailabilityRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *AvailabilityRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("atualizando cache de disponibilidade")

	count, err := r.source.RefreshOpenEventAvailability(ctx)
	if err != nil {
		log.Error("falha ao atualizar cache de disponibilidade", zap.Error(err))
		return
	}

	if count > 0 {
		log.Debug("cache de disponibilidade atualizado", zap.Int("events", count))
	}
}
