package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// boltDBConsumer drains the returns queue and mirrors each history
// record into the bolt archive. Archiving failures are logged only:
// the primary history list already holds the record.
type boltDBConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	archive HistoryStorage
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, archive HistoryStorage) Consumer {
	return &boltDBConsumer{logger, q, archive}
}

func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	var record History
	var err error
	var qid string
	for {
		qid, record, err = bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case ReturnsQueue:
			if err = bc.archive.Append(ctx, record); err != nil {
				bc.logger.Error("consumer: failed to archive return", zap.Any("record", record), zap.Error(err))
			}
		default:
			bc.logger.Warn("consumer: received record on unknown queue id", zap.String("qid", qid), zap.Any("record", record))
		}
	}
}
