package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"dynamic-pricing-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "consumer").Logger()

// Invalidator drops cached pricing state of a SKU.
type Invalidator interface {
	InvalidateSKU(ctx context.Context, sku string) error
}

// MessageReader reads kafka messages.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const defaultRetryBackoff = 2 * time.Second

type Consumer struct {
	reader       MessageReader
	pricing      Invalidator
	retryBackoff time.Duration // Pause after a failed read
}

func NewConsumer(reader MessageReader, pricing Invalidator) *Consumer {
	return &Consumer{reader: reader, pricing: pricing, retryBackoff: defaultRetryBackoff}
}

// Start listens for ledger events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Info().Msg("Ledger consumer stopped")
				return
			}
			logger.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				logger.Info().Msg("Ledger consumer stopped")
				return
			case <-time.After(c.retryBackoff):
			}
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage invalidates the recommendations of the SKU a ledger event touched.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	// key -> "ledger.sale.SKU-1", "ledger.receipt.SKU-1" or "ledger.adjustment.SKU-1"
	parts := strings.SplitN(string(msg.Key), ".", 3)
	if len(parts) != 3 || parts[0] != "ledger" {
		logger.Error().Msgf("Unexpected message key: %q", msg.Key)
		return
	}
	eventType, sku := parts[1], parts[2]

	if len(msg.Value) > 0 {
		var event entity.LedgerEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error().Msgf("Error unmarshalling message: %v", err)
			return
		}
		if event.SKU != "" {
			sku = event.SKU
		}
	}

	switch eventType {
	case entity.LedgerEventSale, entity.LedgerEventReceipt, entity.LedgerEventAdjustment:
		if err := c.pricing.InvalidateSKU(ctx, sku); err != nil {
			logger.Error().Msgf("Error invalidating recommendations for SKU %s: %v", sku, err)
		}
	default:
		logger.Error().Msgf("Unknown ledger event type: %s", eventType)
	}
}
