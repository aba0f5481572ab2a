package repository

import (
	"context"
	"strings"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	pkgkafka "SediPull/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher over a Kafka topic.
// Messages are keyed by symbol so one security's signals stay ordered
// within a partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) domrepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

// signalEnvelope is the wire shape for downstream consumers. It is a
// projection, not the full Signal: the market snapshot is transient and
// is not replayed.
type signalEnvelope struct {
	Symbol       string    `json:"symbol"`
	Issuer       string    `json:"issuer,omitempty"`
	Insider      string    `json:"insider"`
	Relationship string    `json:"relationship,omitempty"`
	Score        int       `json:"score"`
	DisplayScore int       `json:"display_score"`
	NetCash      float64   `json:"net_cash"`
	BuyVolume    float64   `json:"buy_volume"`
	AvgPrice     float64   `json:"avg_price"`
	Reasons      []string  `json:"reasons"`
	Plan         bool      `json:"plan"`
	Watchlisted  bool      `json:"watchlisted"`
	Escalated    bool      `json:"escalated"`
	LastTxDate   time.Time `json:"last_tx_date"`
	Commentary   string    `json:"commentary,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func envelope(sig models.Signal) signalEnvelope {
	return signalEnvelope{
		Symbol:       strings.ToUpper(sig.Symbol),
		Issuer:       sig.Issuer,
		Insider:      sig.Insider,
		Relationship: sig.Relationship,
		Score:        sig.Score,
		DisplayScore: sig.DisplayScore,
		NetCash:      sig.NetCash,
		BuyVolume:    sig.BuyVolume,
		AvgPrice:     sig.AvgPrice,
		Reasons:      sig.Reasons,
		Plan:         sig.Plan,
		Watchlisted:  sig.Watchlisted,
		Escalated:    sig.Escalated,
		LastTxDate:   sig.LastTxDate,
		Commentary:   sig.Commentary,
		GeneratedAt:  sig.GeneratedAt,
	}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), envelope(sig))
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, sigs []models.Signal) error {
	if len(sigs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(sigs))
	for i, sig := range sigs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(sig.Symbol),
			Value: envelope(sig),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
