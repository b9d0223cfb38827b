package service

import (
	"context"
	"encoding/json"
	"strconv"

	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/repository"
)

const deadLetterUnprocessed = "unprocessed"

type DLQService interface {
	// Record saves a delivery that exhausted its attempts on queueName.
	Record(ctx context.Context, queueName string, d queue.Delivery, reason string) error
}

type dlqService struct {
	repo repository.DLQRepository
}

func NewDLQService(repo repository.DLQRepository) DLQService {
	return &dlqService{repo: repo}
}

func (s *dlqService) Record(ctx context.Context, queueName string, d queue.Delivery, reason string) error {
	payload := string(d.Payload)
	if payload == "" {
		// Fall back to the decoded job when the transport kept no raw payload
		if b, err := d.Job.Encode(); err == nil {
			payload = string(b)
		}
	}

	var attributesJSON *string
	attrs := map[string]string{"attempt": strconv.Itoa(d.Attempt), "document_id": d.Job.DocumentID}
	if b, err := json.Marshal(attrs); err == nil {
		str := string(b)
		attributesJSON = &str
	}

	msg := &model.DeadLetterMessage{
		QueueName:  queueName,
		MessageID:  d.ID,
		Payload:    payload,
		Attributes: attributesJSON,
		Error:      reason,
		Status:     deadLetterUnprocessed,
	}
	return s.repo.Create(ctx, msg)
}
