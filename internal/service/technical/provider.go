package technical

import (
	"context"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	drepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
)

// Provider serves operator-supplied technical readings from configuration.
// Readings are inputs to the engine, never computed here; a value left unset
// in config keeps the dependent signals inactive.
type Provider struct {
	rsi              *float64
	macdDivergence   *bool
	volumeDivergence *bool
}

func New(rsi *float64, macdDivergence, volumeDivergence *bool) drepo.TechnicalData {
	return &Provider{
		rsi:              rsi,
		macdDivergence:   macdDivergence,
		volumeDivergence: volumeDivergence,
	}
}

func (p *Provider) Readings(_ context.Context) (map[string]models.TechnicalReading, error) {
	readings := make(map[string]models.TechnicalReading, 3)
	if p.rsi != nil {
		readings[models.TechnicalRSI] = models.TechnicalReading{Value: p.rsi}
	}
	if p.macdDivergence != nil {
		readings[models.TechnicalMACDDivergence] = models.TechnicalReading{Active: p.macdDivergence}
	}
	if p.volumeDivergence != nil {
		readings[models.TechnicalVolumeDivergence] = models.TechnicalReading{Active: p.volumeDivergence}
	}
	return readings, nil
}
